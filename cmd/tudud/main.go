package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:     "tudud",
		Short:   "TuduAI - task management server",
		Version: Version,
	}

	// Add subcommands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
