package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"notepad/models"
)

// Config is read once at startup and passed to whatever needs it.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DBPath      string
	PrefsPath   string
	ExportDir   string
	Untitled    string
	CORSOrigins string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		Env:         GetEnv("ENV", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		DBPath:      GetEnv("DB_PATH", "./data/notepad.db"),
		PrefsPath:   GetEnv("PREFS_PATH", "./data/prefs.db"),
		ExportDir:   GetEnv("EXPORT_DIR", "./data/exports"),
		Untitled:    GetEnv("UNTITLED_TITLE", models.DefaultUntitled),
		CORSOrigins: GetEnv("CORS_ORIGINS", "*"),
	}

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT must be a valid port number, got %q", cfg.Port)
	}
	if cfg.DBPath == cfg.PrefsPath {
		return nil, fmt.Errorf("DB_PATH and PREFS_PATH must differ")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
