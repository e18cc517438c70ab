// Package main implements the secscrape CLI: a local API server plus
// one-shot extraction and read-back commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Lllllllleong/secfilingflow/internal/app"
	"github.com/Lllllllleong/secfilingflow/internal/config"
	"github.com/spf13/cobra"
)

var (
	// configFile overrides CONFIG_FILE
	configFile string
	outputJSON bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "secscrape",
	Short: "Extract and browse sections of SEC filings",
	Long: `secscrape extracts named sections of SEC filings through the configured
extraction provider and records every run as a session under its filing.

Configuration is read from the environment (PROJECT_ID, SEC_API_KEY, ...)
and optionally from a YAML file given by --config or CONFIG_FILE.`,
	Version:      app.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (defaults to $CONFIG_FILE)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
}

// loadApp reads configuration and wires the scraper.
func loadApp(ctx context.Context) (*app.App, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadWithFile(path)
	if err != nil {
		return nil, err
	}
	app.ConfigureLogging(cfg)
	return app.New(ctx, cfg)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
