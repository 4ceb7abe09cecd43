package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level
	RawLogLevel string     `env:"LOG_LEVEL" envDefault:"info"`

	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	ModelName        string `env:"MODEL_NAME"`
	BackendModelName string `env:"BACKEND_MODEL_NAME"`

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"./data/chronicle.db"`
	GameStateTTL   time.Duration `env:"GAMESTATE_TTL" envDefault:"0s"`

	RulesPath       string        `env:"RULES_PATH"`
	SummaryInterval int           `env:"SUMMARY_INTERVAL" envDefault:"15"`
	HistoryWindow   int           `env:"HISTORY_WINDOW" envDefault:"5"`
	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT" envDefault:"120s"`
}

// Load reads an optional .env file, then parses the environment.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLogLevel)
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if cfg.SummaryInterval < 0 {
		return nil, fmt.Errorf("SUMMARY_INTERVAL must not be negative, got %d", cfg.SummaryInterval)
	}
	if cfg.HistoryWindow < 1 {
		return nil, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", cfg.HistoryWindow)
	}
	if cfg.OracleTimeout <= 0 {
		return nil, fmt.Errorf("ORACLE_TIMEOUT must be positive, got %s", cfg.OracleTimeout)
	}
	switch cfg.StorageBackend {
	case "redis", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q (supported: redis, sqlite)", cfg.StorageBackend)
	}
	return &cfg, nil
}

// LoadRules returns the reconciliation rules. An empty path yields the
// defaults; a rules file only needs the values it changes.
func LoadRules(path string) (state.Rules, error) {
	if path == "" {
		return state.DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return state.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var r state.Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return state.Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return state.Rules{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return r, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
