package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/mrfingest/internal/config"
	"github.com/gyeh/mrfingest/internal/model"
)

// RunDir ingests every MRF file in a directory with bounded
// parallelism. One file's failure does not stop the others; the
// returned error joins every per-file failure, and the summaries cover
// the files that completed.
func RunDir(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) ([]*model.IngestSummary, error) {
	entries, err := os.ReadDir(cfg.DirPath)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".csv":
			paths = append(paths, filepath.Join(cfg.DirPath, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .json or .csv files in %s", cfg.DirPath)
	}
	log.Info().Int("files", len(paths)).Int("workers", cfg.EffectiveWorkers()).
		Msg("starting directory ingest")

	summaries := make([]*model.IngestSummary, len(paths))
	fileErrs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.EffectiveWorkers())
	for i, path := range paths {
		g.Go(func() error {
			summary, err := Run(gctx, pool, log, cfg, path)
			if err != nil {
				log.Error().Err(err).Str("file", path).Msg("file ingest failed")
				fileErrs[i] = fmt.Errorf("%s: %w", filepath.Base(path), err)
				// Cancellation is the only error worth stopping the group for.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return compact(summaries), err
	}
	return compact(summaries), errors.Join(fileErrs...)
}

func compact(summaries []*model.IngestSummary) []*model.IngestSummary {
	out := summaries[:0]
	for _, s := range summaries {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
