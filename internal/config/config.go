package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "QUINIELA_"
	envConfig  = "QUINIELA_CONFIG"
	defaultURL = "https://cognitech.pythonanywhere.com"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		BaseURL:              defaultURL,
		RequestTimeout:       10 * time.Second,
		EventPollInterval:    15 * time.Second,
		ResultsPollInterval:  20 * time.Second,
		RankingsPollInterval: 30 * time.Second,
		DBName:               "quiniela.db",
		LogLevel:             "info",
		LogFormat:            "json",
		Addr:                 ":9090",
	}
}

// Load reads configuration from a .env file, an optional YAML file and the
// environment, in that order of precedence (low -> high):
//  1. defaults
//  2. YAML file named by QUINIELA_CONFIG
//  3. QUINIELA_* environment variables
//
// Nested keys use a double underscore, e.g. QUINIELA_SLACK__TOKEN -> slack.token.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("%w: reading environment: %w", ErrLoadConfig, err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a client cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}
	for name, d := range map[string]time.Duration{
		"event_poll_interval":    c.EventPollInterval,
		"results_poll_interval":  c.ResultsPollInterval,
		"rankings_poll_interval": c.RankingsPollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
		}
	}
	if c.DBName == "" && c.Turso.PrimaryURL == "" {
		return fmt.Errorf("%w: db_name or turso.primary_url is required", ErrInvalidConfig)
	}
	return nil
}

// SetupLogging applies the configured level and formatter to the global logger.
func (c Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warn("Unknown log level, falling back to info", "level", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "text", "":
		log.SetFormatter(log.TextFormatter)
	case "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.JSONFormatter)
	}
}
