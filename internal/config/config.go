// Package config loads server configuration from environment variables
// and an optional YAML file for user-defined validation rules.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"stockpro/internal/core/rule"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Redis      RedisConfig
	Minio      MinioConfig
	Extraction ExtractionConfig
	Log        LogConfig
	Rules      RulesConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// IdempotencyEnabled turns on replay protection for mutating
	// requests that carry an Idempotency-Key header.
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// PTAXTTL bounds how long a cached exchange rate is served before
	// the rate endpoint is consulted again.
	PTAXTTL time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type ExtractionConfig struct {
	// URL of the XML/PDF/XLSX extraction backend.
	URL string

	// SharedSecret is sent as a static header on every extraction call.
	SharedSecret string

	Timeout time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

// RulesConfig holds user-defined validation rules per entity kind,
// loaded from the YAML file at RULES_CONFIG_PATH when set.
type RulesConfig struct {
	Items     []rule.Rule `mapstructure:"items"`
	Suppliers []rule.Rule `mapstructure:"suppliers"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("IDEMPOTENCY_ENABLED", true)
	v.SetDefault("IDEMPOTENCY_TTL", "10m")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PTAX_CACHE_TTL", "1h")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_BUCKET", "stockpro-attachments")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("EXTRACTION_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("RULES_CONFIG_PATH", "")

	v.AutomaticEnv()

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("required environment variable DATABASE_URL not set")
	}

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("required environment variable JWT_SECRET not set")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("APP_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),

			IdempotencyEnabled: v.GetBool("IDEMPOTENCY_ENABLED"),
			IdempotencyTTL:     v.GetDuration("IDEMPOTENCY_TTL"),
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			PTAXTTL:  v.GetDuration("PTAX_CACHE_TTL"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Extraction: ExtractionConfig{
			URL:          v.GetString("EXTRACTION_URL"),
			SharedSecret: v.GetString("EXTRACTION_SHARED_SECRET"),
			Timeout:      v.GetDuration("EXTRACTION_TIMEOUT"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetString("APP_ENV") == "development",
		},
	}

	if path := v.GetString("RULES_CONFIG_PATH"); path != "" {
		rules, err := loadRules(path)
		if err != nil {
			return nil, fmt.Errorf("load validation rules: %w", err)
		}
		cfg.Rules = *rules
	}

	return cfg, nil
}

func loadRules(path string) (*RulesConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var rules RulesConfig
	if err := v.Unmarshal(&rules); err != nil {
		return nil, err
	}
	return &rules, nil
}
