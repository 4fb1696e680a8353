package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/db"
	"github.com/gyeh/mrfingest/internal/exitcode"
	"github.com/gyeh/mrfingest/internal/ingest"
	"github.com/gyeh/mrfingest/internal/logging"
	"github.com/gyeh/mrfingest/internal/model"
)

var ingestConfigPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one MRF file or a directory of them",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to one MRF file")
	f.StringVar(&cfg.DirPath, "dir", "", "Directory of MRF files to ingest")
	f.StringVar(&cfg.HospitalName, "hospital-name", "", "Fallback hospital name for files without a usable header")
	f.BoolVar(&cfg.PurgeFirst, "purge-first", false, "Delete the hospital's documents before ingesting")
	f.IntVar(&cfg.MaxItems, "max-items", 0, "Stop each parser after N items (0 = no limit)")
	f.IntVar(&cfg.Workers, "workers", 0, "Directory ingest concurrency (default 4)")
	f.IntVar(&cfg.StreamThresholdMB, "stream-threshold-mb", 0, "JSON streaming cutover size in MB (default 64)")
	f.StringVar(&ingestConfigPath, "config", "", "Optional YAML config overlay")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if ingestConfigPath != "" {
		if err := cfg.LoadFromFile(ingestConfigPath); err != nil {
			log.Error().Err(err).Msg("config file failed")
			os.Exit(exitcode.UsageError)
		}
	}
	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if cfg.DirPath != "" {
		summaries, err := ingest.RunDir(ctx, pool, log, &cfg)
		for _, s := range summaries {
			printSummary(s)
		}
		if err != nil {
			log.Error().Err(err).Msg("directory ingest finished with failures")
			os.Exit(exitcode.PartialSuccess)
		}
		return nil
	}

	summary, err := ingest.Run(ctx, pool, log, &cfg, cfg.FilePath)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
			switch pe.Phase {
			case "detect":
				os.Exit(exitcode.ValidationError)
			case "resolve", "persist":
				os.Exit(exitcode.WriteError)
			default:
				os.Exit(exitcode.ParseError)
			}
		}
		log.Error().Err(err).Msg("ingest failed")
		os.Exit(exitcode.ParseError)
	}

	printSummary(summary)
	if summary.WriteErrors > 0 {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

func printSummary(s *model.IngestSummary) {
	fmt.Printf("Ingest complete: %s (%s): %d items parsed, %d docs inserted, %d modified, %d write errors (%.1fs)\n",
		filepath.Base(s.FilePath), s.Format,
		s.ItemsParsed, s.DocsInserted, s.DocsModified, s.WriteErrors,
		s.DurationTotal.Seconds())
}
