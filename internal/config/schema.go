package config

import "time"

// Config represents the full TuduAI server configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// SQLite database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// OpenAI settings for natural-language task parsing
	OpenAI OpenAIConfig `yaml:"openai" mapstructure:"openai"`

	// Outbound mail settings
	Mail MailConfig `yaml:"mail" mapstructure:"mail"`

	// Reminder dispatcher settings
	Reminders RemindersConfig `yaml:"reminders" mapstructure:"reminders"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OpenAIConfig configures the chat-completions client
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// MailConfig configures the mail-send endpoint
type MailConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	From     string `yaml:"from" mapstructure:"from"`
}

// RemindersConfig configures the background reminder dispatcher
type RemindersConfig struct {
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	BatchSize   int           `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency int           `yaml:"concurrency" mapstructure:"concurrency"`
}
