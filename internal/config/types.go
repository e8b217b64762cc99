package config

import "time"

// Config holds all configuration for the client.
type Config struct {
	BaseURL        string        `koanf:"base_url"`
	RequestTimeout time.Duration `koanf:"request_timeout"`

	EventPollInterval    time.Duration `koanf:"event_poll_interval"`
	ResultsPollInterval  time.Duration `koanf:"results_poll_interval"`
	RankingsPollInterval time.Duration `koanf:"rankings_poll_interval"`

	DBName string      `koanf:"db_name"`
	Turso  TursoConfig `koanf:"turso"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Addr is the listen address of the watcher status server.
	Addr string `koanf:"addr"`

	Slack SlackConfig `koanf:"slack"`
}

type TursoConfig struct {
	PrimaryURL string `koanf:"primary_url"`
	AuthToken  string `koanf:"auth_token"`
}

type SlackConfig struct {
	Token     string `koanf:"token"`
	ChannelID string `koanf:"channel_id"`
}

// Enabled reports whether both a token and a channel are configured.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}
