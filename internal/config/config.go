package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Attribution headers sent with every interpretation request.
const (
	AppName = "Tarots OS"
	SiteURL = "https://github.com/lorenzomaiuri-dev/tarots-os"
)

type Config struct {
	HTTPAddr      string
	LogLevel      slog.Level
	HistoryDBPath string
	Locale        string
	DefaultDeckID string
	AIModel       string
	AIBaseURL     string
	AIAPIKey      string
	AITemperature float64
	LLMTimeout    time.Duration
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		HistoryDBPath: envOr("HISTORY_DB_PATH", "tarots.db"),
		Locale:        envOr("LOCALE", "en"),
		DefaultDeckID: envOr("DEFAULT_DECK", "rider-waite"),
		AIModel:       envOr("AI_MODEL", "tngtech/deepseek-r1t2-chimera:free"),
		AIBaseURL:     envOr("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIAPIKey:      os.Getenv("OPENROUTER_API_KEY"),
		AITemperature: 0.7,
		LLMTimeout:    30 * time.Second,
	}

	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid AI_TEMPERATURE %q: %w", v, err)
		}
		c.AITemperature = f
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLMTimeout = d
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
