// Package store persists normalized documents in Postgres. Charge and
// modifier documents are written in batches with unordered semantics:
// a rejected document costs one error count, never the batch.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/normalize"
	embedsql "github.com/gyeh/mrfingest/internal/sql"
)

// DefaultBatchSize is how many documents one upsert statement carries.
const DefaultBatchSize = 500

// ErrHospitalNotFound reports a name lookup that matched nothing.
var ErrHospitalNotFound = errors.New("hospital not found")

type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// BulkResult accounts one bulk write.
type BulkResult struct {
	Inserted int64
	Modified int64
	Errors   int64
}

func (r *BulkResult) add(o BulkResult) {
	r.Inserted += o.Inserted
	r.Modified += o.Modified
	r.Errors += o.Errors
}

// UpsertHospital creates or refreshes the hospital row for one file's
// metadata and returns its id. Identity is the normalized name, so
// re-publications with cosmetic name changes update in place.
func (s *Store) UpsertHospital(ctx context.Context, meta *model.HospitalMetadata) (int64, error) {
	norm := normalize.NormalizeName(meta.Name)
	if norm == "" {
		return 0, errors.New("hospital name is empty")
	}

	var id int64
	err := s.pool.QueryRow(ctx, embedsql.UpsertHospital,
		meta.Name, norm,
		orEmpty(meta.Addresses), orEmpty(meta.LocationNames), orEmpty(meta.NPIs),
		meta.LicenseNumber, meta.LicenseState,
		nilIfEmpty(meta.Version), normalize.ParseDate(meta.LastUpdatedOn),
		nilIfEmpty(meta.Affirmation), meta.ConfirmAffirmation,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert hospital %q: %w", meta.Name, err)
	}
	return id, nil
}

// ResolveHospital looks a hospital up by name without writing.
func (s *Store) ResolveHospital(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, embedsql.ResolveHospital, normalize.NormalizeName(name)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrHospitalNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve hospital %q: %w", name, err)
	}
	return id, nil
}

// BulkUpsertCharges writes charge documents in chunks. A chunk that
// fails as a unit is retried row by row so one bad document cannot
// block its neighbors.
func (s *Store) BulkUpsertCharges(ctx context.Context, docs []model.StoredChargeDocument) (BulkResult, error) {
	var total BulkResult
	for start := 0; start < len(docs); start += DefaultBatchSize {
		end := min(start+DefaultBatchSize, len(docs))
		chunk := docs[start:end]

		res, err := s.upsertChargeChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.log.Warn().Err(err).Int("chunk_size", len(chunk)).
				Msg("charge chunk upsert failed, retrying row by row")
			res = s.upsertChargeRows(ctx, chunk)
		}
		total.add(res)
	}
	return total, nil
}

// upsertChargeChunk runs one statement over the chunk. The statement
// is atomic: on error nothing from the chunk was persisted.
func (s *Store) upsertChargeChunk(ctx context.Context, chunk []model.StoredChargeDocument) (BulkResult, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return BulkResult{}, fmt.Errorf("marshal charge batch: %w", err)
	}

	rows, err := s.pool.Query(ctx, embedsql.UpsertChargeDocuments, payload)
	if err != nil {
		return BulkResult{}, fmt.Errorf("upsert charge batch: %w", err)
	}
	defer rows.Close()

	var res BulkResult
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return BulkResult{}, fmt.Errorf("scan upsert result: %w", err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Modified++
		}
	}
	if err := rows.Err(); err != nil {
		return BulkResult{}, err
	}
	return res, nil
}

func (s *Store) upsertChargeRows(ctx context.Context, chunk []model.StoredChargeDocument) BulkResult {
	var res BulkResult
	for i := range chunk {
		row, err := s.upsertChargeChunk(ctx, chunk[i:i+1])
		if err != nil {
			res.Errors++
			s.log.Warn().Err(err).
				Str("description", chunk[i].Description).
				Str("primary_code", chunk[i].PrimaryCode).
				Msg("charge document rejected")
			continue
		}
		res.add(row)
	}
	return res
}

// BulkUpsertModifiers writes modifier documents with the same chunking
// and fallback behavior as charges.
func (s *Store) BulkUpsertModifiers(ctx context.Context, docs []model.StoredModifierDocument) (BulkResult, error) {
	var total BulkResult
	for start := 0; start < len(docs); start += DefaultBatchSize {
		end := min(start+DefaultBatchSize, len(docs))
		chunk := docs[start:end]

		res, err := s.upsertModifierChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.log.Warn().Err(err).Int("chunk_size", len(chunk)).
				Msg("modifier chunk upsert failed, retrying row by row")
			res = s.upsertModifierRows(ctx, chunk)
		}
		total.add(res)
	}
	return total, nil
}

func (s *Store) upsertModifierChunk(ctx context.Context, chunk []model.StoredModifierDocument) (BulkResult, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return BulkResult{}, fmt.Errorf("marshal modifier batch: %w", err)
	}

	rows, err := s.pool.Query(ctx, embedsql.UpsertModifierDocuments, payload)
	if err != nil {
		return BulkResult{}, fmt.Errorf("upsert modifier batch: %w", err)
	}
	defer rows.Close()

	var res BulkResult
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return BulkResult{}, fmt.Errorf("scan upsert result: %w", err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Modified++
		}
	}
	if err := rows.Err(); err != nil {
		return BulkResult{}, err
	}
	return res, nil
}

func (s *Store) upsertModifierRows(ctx context.Context, chunk []model.StoredModifierDocument) BulkResult {
	var res BulkResult
	for i := range chunk {
		row, err := s.upsertModifierChunk(ctx, chunk[i:i+1])
		if err != nil {
			res.Errors++
			s.log.Warn().Err(err).Str("code", chunk[i].Code).Msg("modifier document rejected")
			continue
		}
		res.add(row)
	}
	return res
}

// DeleteHospitalDocuments removes every charge and modifier document
// for a hospital, for full re-ingestion.
func (s *Store) DeleteHospitalDocuments(ctx context.Context, hospitalID int64) (charges, modifiers int64, err error) {
	ct, err := s.pool.Exec(ctx, embedsql.DeleteHospitalCharges, hospitalID)
	if err != nil {
		return 0, 0, fmt.Errorf("delete hospital charges: %w", err)
	}
	mt, err := s.pool.Exec(ctx, embedsql.DeleteHospitalModifiers, hospitalID)
	if err != nil {
		return ct.RowsAffected(), 0, fmt.Errorf("delete hospital modifiers: %w", err)
	}
	return ct.RowsAffected(), mt.RowsAffected(), nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
