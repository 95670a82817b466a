package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	UserAgent string
	CachePath string

	ServerPort string
	LogLevel   string

	// Session material for the internal web API. Optional: without it
	// only the public endpoints work.
	SessionCookies string
	AuthToken      string

	RequestTimeout time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		UserAgent:      getEnv("CHESSCLUB_USER_AGENT", "chessclub/1.0"),
		CachePath:      getEnv("CHESSCLUB_CACHE_PATH", defaultCachePath()),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SessionCookies: getEnv("CHESSCOM_SESSION_COOKIES", ""),
		AuthToken:      getEnv("CHESSCOM_AUTH_TOKEN", ""),
		RequestTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("cache_path", cfg.CachePath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("authenticated", cfg.SessionCookies != "" || cfg.AuthToken != "").
		Msg("configuration loaded")

	return cfg, nil
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chessclub-cache.db"
	}
	return filepath.Join(home, ".cache", "chessclub", "cache.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
