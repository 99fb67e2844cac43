package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingAPIKey = errors.New("GROQ_API_KEY is required")

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	TopP         float32
	MaxTokens    int
	SystemPrompt string

	Port               string
	FrontendDir        string
	CORSAllowedOrigins []string

	TelegramToken string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads path as a .env file when present, then builds the config from
// the process environment. Variables already set in the environment win.
func Load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env", "path", path, "error", err)
	}

	cfg := Config{
		APIKey:             strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		BaseURL:            getenvDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Model:              getenvDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		Temperature:        getenvFloatDefault("TEMPERATURE", 1),
		TopP:               getenvFloatDefault("TOP_P", 1),
		MaxTokens:          getenvIntDefault("MAX_TOKENS", 1024),
		SystemPrompt:       getenvDefault("SYSTEM_PROMPT", "You are a useful AI assistant."),
		Port:               getenvDefault("PORT", "8000"),
		FrontendDir:        getenvDefault("FRONTEND_DIR", "frontend"),
		CORSAllowedOrigins: parseList(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),
		TelegramToken:      strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		LogLevel:           parseLevel(getenvDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(getenvDefault("LOG_FORMAT", "text")),
	}

	if cfg.APIKey == "" {
		return cfg, ErrMissingAPIKey
	}
	return cfg, nil
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		slog.Warn("invalid LOG_LEVEL, using info", "value", raw)
		return slog.LevelInfo
	}
	return lvl
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getenvFloatDefault(key string, def float32) float32 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		slog.Warn("invalid float, using default", "key", key, "value", v, "default", def)
		return def
	}
	return float32(f)
}
