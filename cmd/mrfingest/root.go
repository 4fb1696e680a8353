package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/config"
	"github.com/gyeh/mrfingest/internal/exitcode"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "mrfingest",
	Short: "Hospital MRF ingestion pipeline",
	Long:  "Detects, parses and normalizes hospital machine-readable price files (CMS JSON, tall/wide CSV, vendor flat JSON) into Postgres charge documents.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
