package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the application configuration.
// It's populated once by LoadConfig.
var AppConfig Configuration
var once sync.Once

// Configuration defines the structure for application settings.
// yaml 标签对应可选配置文件 (CONFIG_FILE) 中的键，环境变量优先级更高。
type Configuration struct {
	JWTSecret       string `yaml:"jwt_secret"`
	ServerPort      string `yaml:"server_port"`
	FrontendBaseURL string `yaml:"frontend_base_url"` // 扫码 URL 的前缀
	AppEnv          string `yaml:"app_env"`

	SQLitePath string `yaml:"sqlite_path"`
	DBLogLevel string `yaml:"db_log_level"`

	RedisURL   string        `yaml:"redis_url"` // 为空时使用内存会话存储
	SessionTTL time.Duration `yaml:"session_ttl"`

	// AllowInactiveQRInDev 仅在 AppEnv=development 时生效
	AllowInactiveQRInDev    bool          `yaml:"allow_inactive_qr_in_dev"`
	FingerprintPrefixLength int           `yaml:"fingerprint_prefix_length"`
	FraudPollInterval       time.Duration `yaml:"fraud_poll_interval"`
	QRImageSize             int           `yaml:"qr_image_size"`

	AdminUsername    string `yaml:"admin_username"`
	AdminPassword    string `yaml:"admin_password"`
	AdminCompanyID   string `yaml:"admin_company_id"`
	AdminNotifyEmail string `yaml:"admin_notify_email"`
}

const (
	defaultJWTSecret       = "attendance"            // Default JWT secret, used if env var is not set.
	envJWTSecretKey        = "JWT_SECRET_KEY"        // Environment variable name for the JWT secret.
	defaultServerPort      = "8081"                  // Default server port.
	envServerPortKey       = "SERVER_PORT"           // Environment variable name for the server port.
	defaultFrontendBaseURL = "http://localhost:3000" // 默认前端基础URL
	envFrontendBaseURLKey  = "FRONTEND_BASE_URL"     // 前端基础URL环境变量名
	envAppEnvKey           = "APP_ENV"
	defaultAppEnv          = "production"

	envConfigFileKey = "CONFIG_FILE"

	envSQLitePathKey  = "SQLITE_DB_PATH"
	defaultSQLitePath = "data/attendance.db"
	envDBLogLevelKey  = "DB_LOG_LEVEL"
	defaultDBLogLevel = "warn"

	envRedisURLKey    = "REDIS_URL"
	envSessionTTLKey  = "SESSION_TTL"
	defaultSessionTTL = 30 * 24 * time.Hour

	envAllowInactiveKey        = "ALLOW_INACTIVE_QR_IN_DEV"
	envPrefixLengthKey         = "FINGERPRINT_PREFIX_LENGTH"
	defaultPrefixLength        = 10
	envFraudPollIntervalKey    = "FRAUD_POLL_INTERVAL"
	defaultFraudPollInterval   = 30 * time.Second
	envQRImageSizeKey          = "QR_IMAGE_SIZE"
	defaultQRImageSize         = 256
	envAdminUsernameKey        = "ADMIN_USERNAME"
	envAdminPasswordKey        = "ADMIN_PASSWORD"
	envAdminCompanyIDKey       = "ADMIN_COMPANY_ID"
	envAdminNotifyEmailKey     = "ADMIN_NOTIFY_EMAIL"
	developmentEnvironmentName = "development"
)

// IsDevelopment 是否运行在开发环境
func (c Configuration) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, developmentEnvironmentName)
}

// InactiveQROverride 是否允许开发环境下接受已停用的二维码，需同时满足两个条件
func (c Configuration) InactiveQROverride() bool {
	return c.IsDevelopment() && c.AllowInactiveQRInDev
}

// LoadConfig loads configuration from .env, an optional YAML file and environment variables.
// It should be called once at application startup.
func LoadConfig() {
	once.Do(func() {
		// .env 不存在时忽略
		_ = godotenv.Load()

		cfg := Configuration{}
		if path := os.Getenv(envConfigFileKey); path != "" {
			fileCfg, err := loadFile(path)
			if err != nil {
				log.Printf("警告: 读取配置文件 %s 失败: %v", path, err)
			} else {
				cfg = fileCfg
				log.Printf("信息: 已读取配置文件 %s。", path)
			}
		}

		AppConfig = Resolve(cfg, os.Getenv)
		log.Println("应用配置已加载。")
	})
}

// loadFile 从 YAML 文件读取配置
func loadFile(path string) (Configuration, error) {
	var cfg Configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Resolve 以 base 为基础应用环境变量并补齐默认值
func Resolve(base Configuration, getenv func(string) string) Configuration {
	cfg := base

	if v := getenv(envJWTSecretKey); v != "" {
		cfg.JWTSecret = v
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret
		log.Printf("警告: %s 环境变量未设置。正在使用默认的JWT密钥。请在生产环境中设置此变量以保证安全。", envJWTSecretKey)
	}

	if v := getenv(envServerPortKey); v != "" {
		cfg.ServerPort = v
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
		log.Printf("信息: %s 环境变量未设置。正在使用默认端口 %s。", envServerPortKey, defaultServerPort)
	}

	if v := getenv(envFrontendBaseURLKey); v != "" {
		cfg.FrontendBaseURL = v
	}
	if cfg.FrontendBaseURL == "" {
		cfg.FrontendBaseURL = defaultFrontendBaseURL
		log.Printf("信息: %s 环境变量未设置。正在使用默认前端URL %s。这在生产环境中可能不正确。", envFrontendBaseURLKey, defaultFrontendBaseURL)
	}

	cfg.AppEnv = stringOr(getenv(envAppEnvKey), cfg.AppEnv, defaultAppEnv)
	cfg.SQLitePath = stringOr(getenv(envSQLitePathKey), cfg.SQLitePath, defaultSQLitePath)
	cfg.DBLogLevel = stringOr(getenv(envDBLogLevelKey), cfg.DBLogLevel, defaultDBLogLevel)
	cfg.RedisURL = stringOr(getenv(envRedisURLKey), cfg.RedisURL, "")

	cfg.SessionTTL = durationOr(envSessionTTLKey, getenv(envSessionTTLKey), cfg.SessionTTL, defaultSessionTTL)
	cfg.FraudPollInterval = durationOr(envFraudPollIntervalKey, getenv(envFraudPollIntervalKey), cfg.FraudPollInterval, defaultFraudPollInterval)
	cfg.FingerprintPrefixLength = intOr(envPrefixLengthKey, getenv(envPrefixLengthKey), cfg.FingerprintPrefixLength, defaultPrefixLength)
	cfg.QRImageSize = intOr(envQRImageSizeKey, getenv(envQRImageSizeKey), cfg.QRImageSize, defaultQRImageSize)

	if v := getenv(envAllowInactiveKey); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("警告: %s=%q 无法解析为布尔值，已忽略。", envAllowInactiveKey, v)
		} else {
			cfg.AllowInactiveQRInDev = b
		}
	}
	if cfg.AllowInactiveQRInDev && !cfg.IsDevelopment() {
		log.Printf("警告: %s 仅在 %s=%s 时生效，当前环境为 %s。", envAllowInactiveKey, envAppEnvKey, developmentEnvironmentName, cfg.AppEnv)
	}

	cfg.AdminUsername = stringOr(getenv(envAdminUsernameKey), cfg.AdminUsername, "")
	cfg.AdminPassword = stringOr(getenv(envAdminPasswordKey), cfg.AdminPassword, "")
	cfg.AdminCompanyID = stringOr(getenv(envAdminCompanyIDKey), cfg.AdminCompanyID, "")
	cfg.AdminNotifyEmail = stringOr(getenv(envAdminNotifyEmailKey), cfg.AdminNotifyEmail, "")

	return cfg
}

func stringOr(env, current, def string) string {
	if env != "" {
		return env
	}
	if current != "" {
		return current
	}
	return def
}

func durationOr(key, env string, current, def time.Duration) time.Duration {
	if env != "" {
		d, err := time.ParseDuration(env)
		if err == nil && d > 0 {
			return d
		}
		log.Printf("警告: %s=%q 不是有效的时长，已忽略。", key, env)
	}
	if current > 0 {
		return current
	}
	return def
}

func intOr(key, env string, current, def int) int {
	if env != "" {
		n, err := strconv.Atoi(env)
		if err == nil && n > 0 {
			return n
		}
		log.Printf("警告: %s=%q 不是有效的正整数，已忽略。", key, env)
	}
	if current > 0 {
		return current
	}
	return def
}
