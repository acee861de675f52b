package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/config"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/mail"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/reminder"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

func remindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one reminder sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := storage.NewStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			mailer := mail.NewClient(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From)
			dispatcher := reminder.New(store, mailer,
				cfg.Reminders.Interval, cfg.Reminders.BatchSize, cfg.Reminders.Concurrency)

			sent, err := dispatcher.Sweep(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Delivered %d reminder(s)\n", sent)
			return nil
		},
	}
}
