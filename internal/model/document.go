package model

import (
	"time"

	"github.com/google/uuid"
)

// StoredChargeDocument is the persisted form of one charge item in one
// care setting. Upsert identity: (hospital, description, setting,
// primary code, primary code type).
type StoredChargeDocument struct {
	HospitalID      int64             `json:"hospital_id"`
	Description     string            `json:"description"`
	SearchText      string            `json:"search_text"`
	Setting         Setting           `json:"setting"`
	PrimaryCode     string            `json:"primary_code"`
	PrimaryCodeType CodeType          `json:"primary_code_type"`
	Codes           []CodeInformation `json:"codes"`
	GrossCharge     *float64          `json:"gross_charge,omitempty"`
	DiscountedCash  *float64          `json:"discounted_cash,omitempty"`
	MinNegotiated   *float64          `json:"min_negotiated,omitempty"`
	MaxNegotiated   *float64          `json:"max_negotiated,omitempty"`
	PayerCharges    []PayerCharge     `json:"payer_charges"`
	Modifiers       []string          `json:"modifiers,omitempty"`
	DrugUnit        *float64          `json:"drug_unit,omitempty"`
	DrugType        *string           `json:"drug_type,omitempty"`
	Notes           *string           `json:"notes,omitempty"`

	// Ingestion provenance.
	SourceVersion string    `json:"source_version"`
	SourceSHA256  string    `json:"source_sha256"`
	IngestRunID   uuid.UUID `json:"ingest_run_id"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// StoredModifierDocument is the persisted form of one modifier record.
// Upsert identity: (hospital, code, description).
type StoredModifierDocument struct {
	HospitalID  int64                `json:"hospital_id"`
	Code        string               `json:"code"`
	Description string               `json:"description"`
	Setting     *string              `json:"setting,omitempty"`
	Payers      []ModifierPayerScope `json:"payers"`
	IngestRunID uuid.UUID            `json:"ingest_run_id"`
	IngestedAt  time.Time            `json:"ingested_at"`
}
