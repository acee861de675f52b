package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/config"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

func statusCmd() *cobra.Command {
	var writeDefault bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration and database summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if writeDefault {
				path := config.GlobalConfigPath()
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists at %s", path)
				}
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return err
				}
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				fmt.Printf("Wrote default config to %s\n", path)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Never print secrets
			cfg.OpenAI.APIKey = redact(cfg.OpenAI.APIKey)
			cfg.Mail.APIKey = redact(cfg.Mail.APIKey)

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))

			return printDatabaseSummary(cfg.Database.Path)
		},
	}

	cmd.Flags().BoolVar(&writeDefault, "init", false, "Write the default global config file")

	return cmd
}

// printDatabaseSummary reports the resolved database path and row
// counts. A missing database file is reported, not created.
func printDatabaseSummary(path string) error {
	resolved, err := storage.ExpandPath(path)
	if err != nil {
		return err
	}

	fmt.Printf("\ndatabase: %s\n", resolved)
	if _, err := os.Stat(resolved); os.IsNotExist(err) {
		fmt.Println("  (not initialized; run 'tudud serve' to create it)")
		return nil
	}

	store, err := storage.NewStore(resolved)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("  users:      %d\n", stats.Users)
	fmt.Printf("  workspaces: %d\n", stats.Workspaces)
	fmt.Printf("  tasks:      %d\n", stats.Tasks)
	fmt.Printf("  comments:   %d\n", stats.Comments)
	fmt.Printf("  reminders:  %d\n", stats.Reminders)
	return nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "(set)"
}
