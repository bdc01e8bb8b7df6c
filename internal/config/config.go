package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment
// variables (optionally seeded from a .env file loaded in main).
type Config struct {
	ServerPort string

	DBDriver             string
	DBDSN                string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	DBAutoMigrate        bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret          string
	SessionTokenTTLMin int
	ResetTokenTTLMin   int

	AdminRoleID   uint
	DefaultRoleID uint

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	MailFrom   string
	AppBaseURL string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	LogLevel      string
	LogJSON       bool
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	AuthRateRPS   float64
	AuthRateBurst int

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_DSN", "user:password@tcp(localhost:3306)/compliance?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MIN", 30)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SESSION_TOKEN_TTL_MIN", 60)
	v.SetDefault("RESET_TOKEN_TTL_MIN", 15)

	v.SetDefault("ADMIN_ROLE_ID", 1)
	v.SetDefault("DEFAULT_ROLE_ID", 2)

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "no-reply@compliance-mait.local")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")

	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "compliance-files")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	v.SetDefault("AUTH_RATE_RPS", 5.0)
	v.SetDefault("AUTH_RATE_BURST", 10)

	return &Config{
		ServerPort: v.GetString("SERVER_PORT"),

		DBDriver:             v.GetString("DB_DRIVER"),
		DBDSN:                v.GetString("DB_DSN"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetimeMin: v.GetInt("DB_CONN_MAX_LIFETIME_MIN"),
		DBAutoMigrate:        v.GetBool("DB_AUTO_MIGRATE"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		RedisDB:   v.GetInt("REDIS_DB"),
		RedisPass: v.GetString("REDIS_PASSWORD"),

		JWTSecret:          v.GetString("JWT_SECRET"),
		SessionTokenTTLMin: v.GetInt("SESSION_TOKEN_TTL_MIN"),
		ResetTokenTTLMin:   v.GetInt("RESET_TOKEN_TTL_MIN"),

		AdminRoleID:   v.GetUint("ADMIN_ROLE_ID"),
		DefaultRoleID: v.GetUint("DEFAULT_ROLE_ID"),

		SMTPHost:   v.GetString("SMTP_HOST"),
		SMTPPort:   v.GetInt("SMTP_PORT"),
		SMTPUser:   v.GetString("SMTP_USER"),
		SMTPPass:   v.GetString("SMTP_PASSWORD"),
		MailFrom:   v.GetString("MAIL_FROM"),
		AppBaseURL: v.GetString("APP_BASE_URL"),

		S3Endpoint:  v.GetString("S3_ENDPOINT"),
		S3Region:    v.GetString("S3_REGION"),
		S3Bucket:    v.GetString("S3_BUCKET"),
		S3AccessKey: v.GetString("S3_ACCESS_KEY"),
		S3SecretKey: v.GetString("S3_SECRET_KEY"),

		LogLevel:      v.GetString("LOG_LEVEL"),
		LogJSON:       v.GetBool("LOG_JSON"),
		LogFile:       v.GetString("LOG_FILE"),
		LogMaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),

		AuthRateRPS:   v.GetFloat64("AUTH_RATE_RPS"),
		AuthRateBurst: v.GetInt("AUTH_RATE_BURST"),

		SwaggerHost: v.GetString("SWAGGER_HOST"),
	}
}
