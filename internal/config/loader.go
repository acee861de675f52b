package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load loads and merges configuration from global and working-directory
// sources, then applies environment overrides
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		applyEnv(cfg)
		return cfg, nil // Return defaults if no home dir
	}

	cwd, err := os.Getwd()
	if err != nil {
		applyEnv(cfg)
		return cfg, nil // Return defaults if no cwd
	}

	// Load global config first
	globalPath := filepath.Join(home, ".tuduai", "config.yaml")
	if err := loadFile(globalPath, cfg); err != nil && !os.IsNotExist(err) {
		// Log warning but continue with defaults
	}

	// Load working-directory config (overrides global)
	localPath := filepath.Join(cwd, "tuduai.yaml")
	if err := loadFile(localPath, cfg); err != nil && !os.IsNotExist(err) {
		// Log warning but continue
	}

	applyEnv(cfg)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

// applyEnv overlays environment variables onto the loaded config. Env
// vars win over files so deployments can keep secrets out of YAML.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("TUDUAI_MAIL_ENDPOINT"); v != "" {
		cfg.Mail.Endpoint = v
	}
	if v := os.Getenv("TUDUAI_MAIL_API_KEY"); v != "" {
		cfg.Mail.APIKey = v
	}
	if v := os.Getenv("TUDUAI_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TUDUAI_DB"); v != "" {
		cfg.Database.Path = v
	}
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tuduai", "config.yaml")
}
