package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qr_attendance/configs"
	"github.com/qr_attendance/internal/auth"
	"github.com/qr_attendance/internal/handlers"
	"github.com/qr_attendance/internal/repositories"
	"github.com/qr_attendance/internal/routes"
	"github.com/qr_attendance/internal/services"
	"github.com/qr_attendance/internal/session"
	"github.com/qr_attendance/pkg/db"
	"github.com/qr_attendance/pkg/email"
	"github.com/qr_attendance/pkg/fingerprint"
)

// @title QR 考勤 API
// @version 1.0
// @description 二维码考勤校验与欺诈检测服务
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configs.LoadConfig()
	cfg := configs.AppConfig

	// 初始化数据库连接
	db.InitDB()
	defer db.CloseDB()
	conn := db.GetDB()

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := db.SeedAdmin(conn, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminCompanyID, cfg.AdminNotifyEmail); err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
	}

	// 会话与 Token 拒绝列表：配置了 Redis 时共享，否则使用进程内存储
	var (
		store    session.Store = session.NewMemoryStore(cfg.SessionTTL)
		denylist auth.Denylist = auth.NewMemoryDenylist()
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := session.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.SessionTTL)
		denylist = auth.NewRedisDenylist(client)
		log.Println("Using redis for scan sessions and token denylist.")
	} else {
		log.Println("REDIS_URL not set, scan sessions are kept in memory.")
	}

	var notifier services.FraudNotifier
	if smtpConfig, err := email.LoadSMTPConfigFromEnv(); err != nil {
		log.Printf("信息: 未配置 SMTP，欺诈告警不发送邮件: %v", err)
	} else {
		notifier = email.NewNotifier(smtpConfig, nil)
	}

	employeeRepo := repositories.NewGormEmployeeRepository(conn)
	qrRepo := repositories.NewGormQRCodeRepository(conn)
	alertRepo := repositories.NewGormFraudAlertRepository(conn)
	timeRepo := repositories.NewGormTimeTrackingRepository(conn)
	userRepo := repositories.NewGormUserRepository(conn)

	gen := fingerprint.NewGenerator(nil)
	qrService := services.NewQRCodeService(qrRepo, cfg.FrontendBaseURL, cfg.QRImageSize)
	matcher := services.NewEmployeeMatcher(employeeRepo, cfg.FingerprintPrefixLength)
	alertService := services.NewFraudAlertService(alertRepo, userRepo, matcher, notifier)
	ledger := services.NewTimeTrackingService(timeRepo, employeeRepo)
	employeeService := services.NewEmployeeService(employeeRepo)
	reportService := services.NewReportService(timeRepo, employeeRepo)

	if cfg.InactiveQROverride() {
		log.Println("警告: 开发模式下已停用的二维码仍会放行 (已记录告警)。")
	}
	validator := services.NewScanValidator(qrService, employeeRepo, alertService, gen, cfg.InactiveQROverride())
	scanService := services.NewScanService(store, validator, employeeService, ledger, gen)

	router := gin.Default()

	// 设置API路由
	routes.SetupRoutes(router, routes.Dependencies{
		JWT:    auth.JWTMiddleware(cfg.JWTSecret, denylist),
		Auth:   handlers.NewAuthHandler(userRepo, cfg.JWTSecret, 24*time.Hour, denylist),
		Scan:   handlers.NewScanHandler(scanService, cfg.SessionTTL, !cfg.IsDevelopment()),
		Health: handlers.NewHealthHandler(conn),
		Admin: routes.AdminHandlers{
			QRCodes:     handlers.NewQRCodeHandler(qrService, cfg.QRImageSize),
			Employees:   handlers.NewEmployeeHandler(employeeService, reportService),
			FraudAlerts: handlers.NewFraudAlertHandler(alertService, cfg.FraudPollInterval),
			Reports:     handlers.NewReportHandler(reportService),
		},
	})

	log.Printf("Server starting on port %s...", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
