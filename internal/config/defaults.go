package config

import (
	"os"
	"time"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr: ":8090",
		},
		Database: DatabaseConfig{
			Path: "~/.tuduai/tuduai.db",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-4o-mini",
		},
		Mail: MailConfig{
			From: "TuduAI <reminders@tuduai.app>",
		},
		Reminders: RemindersConfig{
			Interval:    time.Minute,
			BatchSize:   50,
			Concurrency: 4,
		},
	}
}

// WriteDefault writes the default global configuration to a file
func WriteDefault(path string) error {
	content := `# TuduAI Server Configuration
version: "1"

# HTTP API server
server:
  addr: ":8090"

# SQLite database
database:
  path: ~/.tuduai/tuduai.db

# Natural-language task parsing (OpenAI chat completions)
# The API key can also be supplied via the OPENAI_API_KEY env var.
openai:
  model: gpt-4o-mini
#  api_key: ""
#  base_url: https://api.openai.com/v1/chat/completions

# Reminder emails. When no endpoint is configured, reminder emails are
# logged to the console instead of being delivered.
mail:
  from: "TuduAI <reminders@tuduai.app>"
#  endpoint: https://mail.example.com/send
#  api_key: ""

# Reminder dispatcher
reminders:
  interval: 1m
  batch_size: 50
  concurrency: 4
`
	return os.WriteFile(path, []byte(content), 0644)
}
