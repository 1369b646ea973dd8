package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"

	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	Server  ServerConfig
	DB      *DBConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Mail    MailConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type AuthConfig struct {
	TokenFormat       string
	JWTSecret         string
	PasetoKey         []byte
	TokenTTL          time.Duration
	InitialAdminEmail string
}

// RedisConfig is optional; an empty Addr keeps token revocation in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MailConfig struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type StorageConfig struct {
	Driver     string
	UploadsDir string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, after loading a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		DB: dbCfg,
		Auth: AuthConfig{
			TokenFormat:       strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatJWT)),
			JWTSecret:         os.Getenv("JWT_SECRET_KEY"),
			TokenTTL:          time.Duration(getIntEnv("TOKEN_TTL_MINUTES", 60)) * time.Minute,
			InitialAdminEmail: strings.ToLower(os.Getenv("INITIAL_ADMIN_EMAIL")),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Mail: MailConfig{
			Driver:   strings.ToLower(getEnv("MAIL_DRIVER", MailDriverLog)),
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getIntEnv("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "no-reply@skillhub.local"),
			Timeout:  time.Duration(getIntEnv("MAIL_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
			UploadsDir:  getEnv("UPLOADS_DIR", "uploads"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Bucket:    os.Getenv("S3_BUCKET"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
	}

	switch c.Auth.TokenFormat {
	case TokenFormatJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET_KEY not set in environment")
		}
	case TokenFormatPaseto:
		key, err := hex.DecodeString(os.Getenv("PASETO_KEY"))
		if err != nil || len(key) != 32 {
			return fmt.Errorf("PASETO_KEY must be 64 hex characters")
		}
		c.Auth.PasetoKey = key
	default:
		return fmt.Errorf("unknown TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	switch c.Mail.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
