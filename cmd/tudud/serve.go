package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/auth"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/config"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/mail"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/nlparse"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/reminder"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and reminder dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Printf("tudud version %s starting...", Version)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			// Create context with cancellation
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Cancelling the context drains the server and stops the
			// dispatcher; main unwinds normally so deferred cleanup runs.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Println("Shutting down...")
				cancel()
			}()

			store, err := storage.NewStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			mailer := mail.NewClient(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From)
			dispatcher := reminder.New(store, mailer,
				cfg.Reminders.Interval, cfg.Reminders.BatchSize, cfg.Reminders.Concurrency)
			go dispatcher.Run(ctx)

			parser := nlparse.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
			server := web.NewServer(store, auth.NewService(store), parser)

			log.Printf("Starting API server on %s", cfg.Server.Addr)
			return server.RunContext(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}
