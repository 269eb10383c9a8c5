package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qr_attendance/configs"
	"github.com/qr_attendance/internal/models"
)

var gormDB *gorm.DB

// singleActiveIndexSQL 在存储层保证每个企业至多一个有效二维码
const singleActiveIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_qr_codes_single_active ON qr_codes(company_id) WHERE active = 1`

// InitDB 初始化 GORM 数据库连接
// 数据库文件路径来自 configs.AppConfig.SQLitePath
func InitDB() {
	dbPath := configs.AppConfig.SQLitePath
	log.Printf("Using database path: %s", dbPath)

	// 确保数据库文件所在的目录存在
	if !isMemoryDSN(dbPath) {
		dbDir := filepath.Dir(dbPath)
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			log.Printf("Database directory %s does not exist, creating it...", dbDir)
			if mkErr := os.MkdirAll(dbDir, 0755); mkErr != nil {
				log.Fatalf("Failed to create database directory %s: %v", dbDir, mkErr)
			}
		}
	}

	var err error
	gormDB, err = Open(dbPath, ParseLogLevel(configs.AppConfig.DBLogLevel))
	if err != nil {
		log.Fatalf("Failed to connect to database %s: %v", dbPath, err)
	}
	log.Printf("Successfully connected to database using GORM: %s", dbPath)

	if err := Migrate(gormDB); err != nil {
		log.Fatalf("Failed to auto migrate database tables: %v", err)
	}
	log.Println("Database tables migrated successfully.")
}

// Open 打开 SQLite 连接并设置连接池。内存库只保留一个连接，否则每个连接各自是一个空库。
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	// 配置 GORM 日志级别
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // 慢 SQL 阈值
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true, // 忽略ErrRecordNotFound（记录未找到）错误
			Colorful:                  false,
		},
	)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if isMemoryDSN(dsn) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return conn, nil
}

// Migrate 自动迁移表结构并创建部分唯一索引
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.QRCode{},
		&models.RegisteredEmployee{},
		&models.FraudAlert{},
		&models.TimeTrackingEvent{},
	); err != nil {
		return err
	}
	return conn.Exec(singleActiveIndexSQL).Error
}

// ParseLogLevel 将配置中的字符串映射为 GORM 日志级别，未知值按 warn 处理
func ParseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// GetDB 返回 GORM 数据库实例
func GetDB() *gorm.DB {
	if gormDB == nil {
		log.Fatal("Database not initialized. Call InitDB first.")
	}
	return gormDB
}

// CloseDB 关闭 GORM 数据库连接 (通常在应用退出时调用)
func CloseDB() {
	if gormDB != nil {
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Printf("Error getting underlying sql.DB for closing: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
		log.Println("Database connection closed.")
	}
}
