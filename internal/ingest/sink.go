package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/config"
	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/normalize"
	"github.com/gyeh/mrfingest/internal/parse"
	"github.com/gyeh/mrfingest/internal/store"
)

const flushEvery = store.DefaultBatchSize

// documentSink collects normalized documents from a parser and flushes
// them to the store in batches. The hospital row is created lazily at
// the first flush, once file metadata has arrived; documents built
// before that point are stamped with the hospital id as they flush.
type documentSink struct {
	st  *store.Store
	log zerolog.Logger
	cfg *config.Config
	hc  normalize.HospitalContext

	meta       *model.HospitalMetadata
	resolved   bool
	hospitalID int64

	codeFilter map[model.CodeType]bool

	charges   []model.StoredChargeDocument
	modifiers []model.StoredModifierDocument

	invalid    int64
	result     store.BulkResult
	docsByType map[string]int64
	persistDur time.Duration
}

func newDocumentSink(st *store.Store, log zerolog.Logger, cfg *config.Config, hc normalize.HospitalContext) *documentSink {
	return &documentSink{
		st:         st,
		log:        log,
		cfg:        cfg,
		hc:         hc,
		codeFilter: codeFilterFrom(cfg),
		docsByType: make(map[string]int64),
	}
}

// codeFilterFrom builds the indexed-code-type filter. A config listing
// every known type (the default) means no filter, so codes with types
// outside the known set still pass through.
func codeFilterFrom(cfg *config.Config) map[model.CodeType]bool {
	if len(cfg.CodeTypes) == 0 || len(cfg.CodeTypes) >= len(model.AllCodeTypes) {
		return nil
	}
	f := make(map[model.CodeType]bool, len(cfg.CodeTypes))
	for _, name := range cfg.CodeTypes {
		f[model.ParseCodeType(name)] = true
	}
	return f
}

// callbacks binds the sink to one parse pass; ctx reaches the store
// through the flush closures.
func (s *documentSink) callbacks(ctx context.Context) parse.Callbacks {
	return parse.Callbacks{
		OnMetadata: s.onMetadata,
		OnItem: func(item *model.ChargeItem, index int) error {
			return s.onItem(ctx, item, index)
		},
		OnModifier: func(mod *model.ModifierRecord, index int) error {
			return s.onModifier(ctx, mod, index)
		},
		OnProgress: s.onProgress,
		OnWarning:  s.onWarning,
	}
}

func (s *documentSink) onMetadata(meta *model.HospitalMetadata) {
	s.meta = meta
	s.hc.Version = meta.Version
}

func (s *documentSink) onItem(ctx context.Context, item *model.ChargeItem, index int) error {
	if s.codeFilter != nil {
		item.Codes = filterCodes(item.Codes, s.codeFilter)
	}
	if err := item.Validate(); err != nil {
		s.invalid++
		s.log.Warn().Err(err).Int("index", index).Str("description", item.Description).
			Msg("invalid item skipped")
		return nil
	}

	docs := normalize.BuildDocuments(item, s.hc)
	for _, d := range docs {
		s.docsByType[string(d.PrimaryCodeType)]++
	}
	s.charges = append(s.charges, docs...)
	if len(s.charges) >= flushEvery {
		return s.flushCharges(ctx)
	}
	return nil
}

func (s *documentSink) onModifier(ctx context.Context, mod *model.ModifierRecord, index int) error {
	s.modifiers = append(s.modifiers, normalize.BuildModifierDocument(mod, s.hc))
	if len(s.modifiers) >= flushEvery {
		return s.flushModifiers(ctx)
	}
	return nil
}

func (s *documentSink) onProgress(items, bytesRead int64) {
	s.log.Debug().Int64("items", items).Int64("bytes_read", bytesRead).Msg("parse progress")
}

func (s *documentSink) onWarning(index int, msg string) {
	s.log.Warn().Int("index", index).Str("reason", msg).Msg("element skipped")
}

// finish flushes whatever remains. It also resolves the hospital for
// files that produced metadata but no documents, so an empty but valid
// file still registers its hospital.
func (s *documentSink) finish(ctx context.Context) error {
	if err := s.flushCharges(ctx); err != nil {
		return err
	}
	if err := s.flushModifiers(ctx); err != nil {
		return err
	}
	if !s.resolved && s.hospitalName() != "" {
		if err := s.resolve(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *documentSink) flushCharges(ctx context.Context) error {
	if len(s.charges) == 0 {
		return nil
	}
	if err := s.ensureResolved(ctx); err != nil {
		return err
	}

	start := time.Now()
	for i := range s.charges {
		s.charges[i].HospitalID = s.hospitalID
	}
	res, err := s.st.BulkUpsertCharges(ctx, s.charges)
	s.persistDur += time.Since(start)
	if err != nil {
		return &PipelineError{Phase: "persist", Err: err}
	}
	s.result.Inserted += res.Inserted
	s.result.Modified += res.Modified
	s.result.Errors += res.Errors
	s.charges = s.charges[:0]
	return nil
}

func (s *documentSink) flushModifiers(ctx context.Context) error {
	if len(s.modifiers) == 0 {
		return nil
	}
	if err := s.ensureResolved(ctx); err != nil {
		return err
	}

	start := time.Now()
	for i := range s.modifiers {
		s.modifiers[i].HospitalID = s.hospitalID
	}
	res, err := s.st.BulkUpsertModifiers(ctx, s.modifiers)
	s.persistDur += time.Since(start)
	if err != nil {
		return &PipelineError{Phase: "persist", Err: err}
	}
	s.result.Inserted += res.Inserted
	s.result.Modified += res.Modified
	s.result.Errors += res.Errors
	s.modifiers = s.modifiers[:0]
	return nil
}

func (s *documentSink) ensureResolved(ctx context.Context) error {
	if s.resolved {
		return nil
	}
	return s.resolve(ctx)
}

// resolve upserts the hospital row and, when requested, purges its
// previous documents before anything new is written.
func (s *documentSink) resolve(ctx context.Context) error {
	name := s.hospitalName()
	if name == "" {
		return &PipelineError{Phase: "resolve",
			Err: errors.New("no hospital name in file metadata; use --hospital")}
	}

	meta := s.meta
	if meta == nil {
		meta = &model.HospitalMetadata{}
	}
	if meta.Name == "" {
		m := *meta
		m.Name = name
		meta = &m
	}

	start := time.Now()
	id, err := s.st.UpsertHospital(ctx, meta)
	if err != nil {
		return &PipelineError{Phase: "resolve", Err: err}
	}
	s.hospitalID = id
	s.resolved = true
	s.log.Info().Int64("hospital_id", id).Str("hospital", meta.Name).Msg("hospital resolved")

	if s.cfg.PurgeFirst {
		charges, modifiers, err := s.st.DeleteHospitalDocuments(ctx, id)
		if err != nil {
			return &PipelineError{Phase: "resolve", Err: err}
		}
		s.log.Info().Int64("charges", charges).Int64("modifiers", modifiers).
			Msg("purged previous documents")
	}
	s.persistDur += time.Since(start)
	return nil
}

// hospitalName prefers the file's own metadata; the config name covers
// files that carry none.
func (s *documentSink) hospitalName() string {
	if s.meta != nil && s.meta.Name != "" {
		return s.meta.Name
	}
	return s.cfg.HospitalName
}

func filterCodes(codes []model.CodeInformation, keep map[model.CodeType]bool) []model.CodeInformation {
	kept := codes[:0]
	for _, ci := range codes {
		if keep[ci.Type] {
			kept = append(kept, ci)
		}
	}
	return kept
}
