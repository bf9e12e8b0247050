package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds process configuration.
type Config struct {
	DBPath   string
	HTTPAddr string
	LogLevel string

	// TelegramToken enables the chat gateway when set.
	TelegramToken string
	TelegramAdmin int64

	// BackupSchedule is a cron spec; empty disables snapshots.
	BackupSchedule string
	BackupDir      string

	// DedupeRetention bounds how long chat update ids are remembered.
	DedupeRetention time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("DB_PATH", "ledger.db")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_ADMIN", 0)
	v.SetDefault("BACKUP_SCHEDULE", "")
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("DEDUPE_RETENTION", "72h")
	v.AutomaticEnv()

	cfg := &Config{
		DBPath:          v.GetString("DB_PATH"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		TelegramToken:   v.GetString("TELEGRAM_TOKEN"),
		TelegramAdmin:   v.GetInt64("TELEGRAM_ADMIN"),
		BackupSchedule:  v.GetString("BACKUP_SCHEDULE"),
		BackupDir:       v.GetString("BACKUP_DIR"),
		DedupeRetention: v.GetDuration("DEDUPE_RETENTION"),
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH is required")
	}
	if cfg.TelegramToken != "" && cfg.TelegramAdmin == 0 {
		return nil, fmt.Errorf("TELEGRAM_ADMIN is required when TELEGRAM_TOKEN is set")
	}
	if cfg.DedupeRetention <= 0 {
		return nil, fmt.Errorf("DEDUPE_RETENTION must be positive")
	}

	return cfg, nil
}
