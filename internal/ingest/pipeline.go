package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/config"
	"github.com/gyeh/mrfingest/internal/detect"
	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/mrfcsv"
	"github.com/gyeh/mrfingest/internal/mrfjson"
	"github.com/gyeh/mrfingest/internal/normalize"
	"github.com/gyeh/mrfingest/internal/parse"
	"github.com/gyeh/mrfingest/internal/store"
	"github.com/gyeh/mrfingest/internal/vendorjson"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full ingest pipeline for one file: detect → parse →
// normalize → persist. The hospital row is resolved from file metadata
// at the first batch flush, so a file whose header is unreadable fails
// before any charge document is written.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, path string) (*model.IngestSummary, error) {
	totalStart := time.Now()
	runID := uuid.New()
	log = log.With().Str("file", path).Str("run_id", runID.String()).Logger()

	// Phase 1: Detect
	log.Info().Msg("classifying file")
	det, err := detect.Sniff(path)
	if err != nil {
		return nil, &PipelineError{Phase: "detect", Err: err}
	}
	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, &PipelineError{Phase: "detect", Err: err}
	}
	log.Info().
		Str("format", string(det.Format)).
		Str("version_hint", string(det.VersionHint)).
		Int64("size_bytes", det.SizeBytes).
		Str("sha256", sha).
		Msg("file classified")

	// Phase 2+3: Parse/normalize with persistence at batch boundaries.
	opts := parse.Options{
		MaxItems:        cfg.MaxItems,
		StreamThreshold: cfg.StreamThresholdBytes(),
	}
	parser := parserFor(det.Format, log, opts)
	if parser == nil {
		return nil, &PipelineError{Phase: "detect", Err: fmt.Errorf("no parser for format %q", det.Format)}
	}

	sink := newDocumentSink(store.New(pool, log), log, cfg, normalize.HospitalContext{
		SourceSHA256: sha,
		IngestRunID:  runID,
		IngestedAt:   time.Now().UTC(),
	})

	parseStart := time.Now()
	res, err := parser.Parse(ctx, path, sink.callbacks(ctx))
	if err != nil {
		var pe *PipelineError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &PipelineError{Phase: "parse", Err: err}
	}
	parseDur := time.Since(parseStart) - sink.persistDur

	// Final flush covers the tail batch and metadata-only files.
	if err := sink.finish(ctx); err != nil {
		return nil, err
	}

	summary := &model.IngestSummary{
		FilePath:          path,
		FileSHA256:        sha,
		Format:            string(det.Format),
		VersionHint:       string(det.VersionHint),
		HospitalID:        sink.hospitalID,
		IngestRunID:       runID.String(),
		ItemsParsed:       res.Items,
		ItemsSkipped:      res.Skipped + sink.invalid,
		ModifiersParsed:   res.Modifiers,
		DocsInserted:      sink.result.Inserted,
		DocsModified:      sink.result.Modified,
		WriteErrors:       sink.result.Errors,
		DocsByPrimaryType: sink.docsByType,
		DurationParse:     parseDur,
		DurationPersist:   sink.persistDur,
		DurationTotal:     time.Since(totalStart),
	}

	log.Info().
		Int64("items", summary.ItemsParsed).
		Int64("skipped", summary.ItemsSkipped).
		Int64("docs_inserted", summary.DocsInserted).
		Int64("docs_modified", summary.DocsModified).
		Int64("write_errors", summary.WriteErrors).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	return summary, nil
}

// parserFor maps a detected format onto its parser.
func parserFor(format detect.Format, log zerolog.Logger, opts parse.Options) parse.Parser {
	switch format {
	case detect.FormatJSON:
		return mrfjson.New(log, opts)
	case detect.FormatCSVTall:
		return mrfcsv.NewTall(log, opts)
	case detect.FormatCSVWide:
		return mrfcsv.NewWide(log, opts)
	case detect.FormatVendor:
		return vendorjson.New(log, opts)
	}
	return nil
}
