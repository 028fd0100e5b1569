package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	Storage           string `mapstructure:"STORAGE"`
	DBDSN             string `mapstructure:"DB_DSN"`
	MigrationsEnabled bool   `mapstructure:"MIGRATIONS_ENABLED"`

	HTTPAddr    string   `mapstructure:"HTTP_ADDR"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Лимит создания броней и резервов с одного IP, 0 отключает
	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitBurst     int `mapstructure:"RATE_LIMIT_BURST"`

	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	StaffChatID   int64  `mapstructure:"STAFF_CHAT_ID"`

	// 0 отключает фоновую сверку просроченных резервов
	ExpirySweepInterval time.Duration `mapstructure:"EXPIRY_SWEEP_INTERVAL"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   getenv("ENV", "development"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Storage:       getenv("STORAGE", StoragePostgres),
		DBDSN:         os.Getenv("DB_DSN"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigins:   splitList(os.Getenv("CORS_ORIGINS")),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error

	if cfg.MigrationsEnabled, err = strconv.ParseBool(getenv("MIGRATIONS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("parse MIGRATIONS_ENABLED: %w", err)
	}

	if cfg.ExpirySweepInterval, err = time.ParseDuration(getenv("EXPIRY_SWEEP_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("parse EXPIRY_SWEEP_INTERVAL: %w", err)
	}
	if cfg.ExpirySweepInterval < 0 {
		return nil, fmt.Errorf("EXPIRY_SWEEP_INTERVAL must not be negative")
	}

	if cfg.RateLimitPerMinute, err = strconv.Atoi(getenv("RATE_LIMIT_PER_MINUTE", "30")); err != nil || cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "10")); err != nil || cfg.RateLimitBurst < 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q", os.Getenv("RATE_LIMIT_BURST"))
	}

	if raw := os.Getenv("STAFF_CHAT_ID"); raw != "" {
		if cfg.StaffChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("parse STAFF_CHAT_ID: %w", err)
		}
	}

	// Проверяем обязательные поля
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}

// BotEnabled бот запускается только при заданном токене
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
