// Package export writes stored charge documents to Parquet for
// analytics and reads them back. One Parquet row per payer line;
// documents without payer charges export a single row with the payer
// columns empty.
package export

import (
	"strings"
	"time"

	"github.com/gyeh/mrfingest/internal/model"
)

// ChargeRow is the flat Parquet schema for one payer line of a stored
// charge document.
type ChargeRow struct {
	HospitalID   int64  `parquet:"hospital_id"`
	HospitalName string `parquet:"hospital_name"`

	Description     string `parquet:"description"`
	Setting         string `parquet:"setting"`
	PrimaryCode     string `parquet:"primary_code"`
	PrimaryCodeType string `parquet:"primary_code_type"`
	Codes           string `parquet:"codes"` // TYPE:code pairs joined with ";"

	GrossCharge    *float64 `parquet:"gross_charge,optional"`
	DiscountedCash *float64 `parquet:"discounted_cash,optional"`
	MinNegotiated  *float64 `parquet:"min_negotiated,optional"`
	MaxNegotiated  *float64 `parquet:"max_negotiated,optional"`

	PayerName            *string  `parquet:"payer_name,optional"`
	PlanName             *string  `parquet:"plan_name,optional"`
	Methodology          *string  `parquet:"methodology,optional"`
	NegotiatedDollar     *float64 `parquet:"negotiated_dollar,optional"`
	NegotiatedPercentage *float64 `parquet:"negotiated_percentage,optional"`
	NegotiatedAlgorithm  *string  `parquet:"negotiated_algorithm,optional"`
	MedianAmount         *float64 `parquet:"median_amount,optional"`
	Percentile10         *float64 `parquet:"percentile_10,optional"`
	Percentile90         *float64 `parquet:"percentile_90,optional"`
	SampleCount          *string  `parquet:"sample_count,optional"`
	EstimatedAmount      *float64 `parquet:"estimated_amount,optional"`

	Modifiers *string  `parquet:"modifiers,optional"`
	DrugUnit  *float64 `parquet:"drug_unit_of_measurement,optional"`
	DrugType  *string  `parquet:"drug_type_of_measurement,optional"`
	Notes     *string  `parquet:"additional_notes,optional"`

	SourceVersion string `parquet:"source_version"`
	SourceSHA256  string `parquet:"source_sha256"`
	IngestRunID   string `parquet:"ingest_run_id"`
	IngestedAt    string `parquet:"ingested_at"`
}

// DocumentRows flattens one stored document into Parquet rows.
func DocumentRows(doc model.StoredChargeDocument, hospitalName string) []ChargeRow {
	base := ChargeRow{
		HospitalID:      doc.HospitalID,
		HospitalName:    hospitalName,
		Description:     doc.Description,
		Setting:         string(doc.Setting),
		PrimaryCode:     doc.PrimaryCode,
		PrimaryCodeType: string(doc.PrimaryCodeType),
		Codes:           joinCodes(doc.Codes),
		GrossCharge:     doc.GrossCharge,
		DiscountedCash:  doc.DiscountedCash,
		MinNegotiated:   doc.MinNegotiated,
		MaxNegotiated:   doc.MaxNegotiated,
		DrugUnit:        doc.DrugUnit,
		DrugType:        doc.DrugType,
		Notes:           doc.Notes,
		SourceVersion:   doc.SourceVersion,
		SourceSHA256:    doc.SourceSHA256,
		IngestRunID:     doc.IngestRunID.String(),
		IngestedAt:      doc.IngestedAt.UTC().Format(time.RFC3339),
	}
	if len(doc.Modifiers) > 0 {
		joined := strings.Join(doc.Modifiers, ";")
		base.Modifiers = &joined
	}

	if len(doc.PayerCharges) == 0 {
		return []ChargeRow{base}
	}
	rows := make([]ChargeRow, 0, len(doc.PayerCharges))
	for _, pc := range doc.PayerCharges {
		row := base
		row.PayerName = &pc.PayerName
		row.PlanName = &pc.PlanName
		row.Methodology = pc.Methodology
		row.NegotiatedDollar = pc.DollarAmount
		row.NegotiatedPercentage = pc.Percentage
		row.NegotiatedAlgorithm = pc.Algorithm
		row.MedianAmount = pc.MedianAmount
		row.Percentile10 = pc.Percentile10
		row.Percentile90 = pc.Percentile90
		row.SampleCount = pc.SampleCount
		row.EstimatedAmount = pc.EstimatedAmount
		rows = append(rows, row)
	}
	return rows
}

func joinCodes(codes []model.CodeInformation) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c.Type) + ":" + c.Code
	}
	return strings.Join(parts, ";")
}
