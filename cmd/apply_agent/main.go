// Package main provides the entry point for the apply agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/apply-agent/internal/config"
	"github.com/jonathan/apply-agent/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "apply_agent",
	Short: "Job application agent",
	Long:  "Apply agent extracts job postings, classifies application pages, detects form questions and auto-fills answers in a live browser session.",
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress output")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSetup loads configuration and builds the process logger.
func loadSetup() (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log := observability.NewLogger(level, cfg.Logging.Format)
	return cfg, log, nil
}
