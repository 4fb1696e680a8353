package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/normalize"
	embedsql "github.com/gyeh/mrfingest/internal/sql"
)

// HospitalRow is the stored identity of one hospital.
type HospitalRow struct {
	ID            int64
	Name          string
	LicenseNumber *string
	LicenseState  *string
	SourceVersion *string
	LastUpdatedOn *time.Time
}

// ListHospitals returns every hospital row, ordered by id.
func (s *Store) ListHospitals(ctx context.Context) ([]HospitalRow, error) {
	rows, err := s.pool.Query(ctx, embedsql.ListHospitals)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	defer rows.Close()

	var out []HospitalRow
	for rows.Next() {
		var h HospitalRow
		if err := rows.Scan(&h.ID, &h.Name, &h.LicenseNumber, &h.LicenseState,
			&h.SourceVersion, &h.LastUpdatedOn); err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ChargesByCode returns charge documents whose primary code matches.
// The code is normalized before lookup; an empty codeType matches any
// code system.
func (s *Store) ChargesByCode(ctx context.Context, code string, codeType model.CodeType, limit int) ([]model.StoredChargeDocument, error) {
	rows, err := s.pool.Query(ctx, embedsql.ChargesByCode,
		normalize.NormalizeCode(code), string(codeType), limit)
	if err != nil {
		return nil, fmt.Errorf("charges by code %q: %w", code, err)
	}
	return scanDocuments(rows)
}

// ChargesByHospital returns charge documents for one hospital.
func (s *Store) ChargesByHospital(ctx context.Context, hospitalID int64, limit int) ([]model.StoredChargeDocument, error) {
	rows, err := s.pool.Query(ctx, embedsql.ChargesByHospital, hospitalID, limit)
	if err != nil {
		return nil, fmt.Errorf("charges by hospital %d: %w", hospitalID, err)
	}
	return scanDocuments(rows)
}

// SearchCharges matches free text against the stored search text. The
// query goes through the same flattening as the indexed side, so
// punctuation and case differences do not matter.
func (s *Store) SearchCharges(ctx context.Context, query string, limit int) ([]model.StoredChargeDocument, error) {
	flat := normalize.SearchText(query, nil)
	rows, err := s.pool.Query(ctx, embedsql.SearchCharges, flat, limit)
	if err != nil {
		return nil, fmt.Errorf("search charges %q: %w", query, err)
	}
	return scanDocuments(rows)
}

// ExportCharges streams charge documents for export. hospitalID zero
// means every hospital. The callback runs once per document; a callback
// error aborts the scan.
func (s *Store) ExportCharges(ctx context.Context, hospitalID int64, fn func(model.StoredChargeDocument) error) (int64, error) {
	rows, err := s.pool.Query(ctx, embedsql.ExportCharges, hospitalID)
	if err != nil {
		return 0, fmt.Errorf("export charges: %w", err)
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return n, err
		}
		if err := fn(doc); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func scanDocuments(rows pgx.Rows) ([]model.StoredChargeDocument, error) {
	defer rows.Close()

	var docs []model.StoredChargeDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// scanDocument expects the shared charge-document column list used by
// every SELECT in internal/sql/queries.
func scanDocument(rows pgx.Rows) (model.StoredChargeDocument, error) {
	var d model.StoredChargeDocument
	err := rows.Scan(
		&d.HospitalID, &d.Description, &d.SearchText, &d.Setting,
		&d.PrimaryCode, &d.PrimaryCodeType, &d.Codes,
		&d.GrossCharge, &d.DiscountedCash, &d.MinNegotiated, &d.MaxNegotiated,
		&d.PayerCharges, &d.Modifiers,
		&d.DrugUnit, &d.DrugType, &d.Notes,
		&d.SourceVersion, &d.SourceSHA256, &d.IngestRunID, &d.IngestedAt,
	)
	if err != nil {
		return model.StoredChargeDocument{}, fmt.Errorf("scan charge document: %w", err)
	}
	return d, nil
}
