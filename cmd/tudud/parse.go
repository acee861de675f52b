package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/config"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/nlparse"
)

func parseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [description]",
		Short: "Parse a natural-language task description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			parser := nlparse.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
			parsed, err := parser.Parse(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(parsed, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("Title:   %s\n", parsed.Title)
			if parsed.DueDate != nil {
				fmt.Printf("Due:     %s\n", parsed.DueDate.Format("Mon, Jan 2 2006 15:04"))
			} else {
				fmt.Println("Due:     (none)")
			}
			fmt.Printf("Urgency: %.1f\n", parsed.Urgency)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}
