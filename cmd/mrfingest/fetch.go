package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/mrfingest/internal/exitcode"
	"github.com/gyeh/mrfingest/internal/fetch"
	"github.com/gyeh/mrfingest/internal/logging"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Bulk-download MRFs from a links CSV",
	RunE:  runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&cfg.LinksPath, "links", "", "Links CSV path (required)")
	f.StringVar(&cfg.OutDir, "out-dir", "downloads", "Download output directory")
	f.IntVar(&cfg.Workers, "workers", 0, "Concurrent downloads (default 4)")
	f.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Downloads per second (default 2)")
	_ = fetchCmd.MarkFlagRequired("links")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	links, err := fetch.ReadLinks(cfg.LinksPath)
	if err != nil {
		log.Error().Err(err).Msg("links file failed")
		os.Exit(exitcode.UsageError)
	}

	fetcher := fetch.New(fetch.Options{
		OutDir:    cfg.OutDir,
		Workers:   cfg.Workers,
		RateLimit: cfg.RateLimit,
	}, log)

	sum, err := fetcher.Run(ctx, links)
	if err != nil {
		log.Error().Err(err).Msg("fetch aborted")
		os.Exit(exitcode.FetchError)
	}

	fmt.Printf("Fetched %d/%d files (%d bytes) into %s\n",
		sum.Succeeded, sum.Attempted, sum.TotalBytes, cfg.OutDir)
	if sum.Failed > 0 {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
