package model

import "strings"

// AlgorithmicPricing is the canonical marker written into
// PayerCharge.Algorithm when a file declares a rate as computed by an
// undisclosed algorithm instead of publishing a number. It is distinct
// from nil (no data) and from any dollar amount.
const AlgorithmicPricing = "VARIABLE"

// Setting is the care setting a charge applies to.
type Setting string

const (
	SettingInpatient  Setting = "inpatient"
	SettingOutpatient Setting = "outpatient"
	SettingBoth       Setting = "both"
)

// ParseSetting maps the raw setting spellings seen in MRFs onto the
// canonical values. Empty and unrecognized values mean both settings.
func ParseSetting(raw string) Setting {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "inpatient", "ip":
		return SettingInpatient
	case "outpatient", "op":
		return SettingOutpatient
	default:
		return SettingBoth
	}
}

// CodeInformation pairs a billing code with its code system.
type CodeInformation struct {
	Code string   `json:"code"`
	Type CodeType `json:"type"`
}

// DrugInfo carries the drug measurement fields attached to pharmacy items.
type DrugInfo struct {
	Unit *float64 `json:"unit,omitempty"`
	Type string   `json:"type,omitempty"`
}

// PayerCharge is one payer/plan-specific negotiated charge. DollarAmount,
// Percentage and Algorithm are informative together, not exclusive; a
// record with none of them set is not worth keeping.
type PayerCharge struct {
	PayerName    string   `json:"payer_name"`
	PlanName     string   `json:"plan_name"`
	Methodology  *string  `json:"methodology,omitempty"`
	DollarAmount *float64 `json:"dollar_amount,omitempty"`
	Percentage   *float64 `json:"percentage,omitempty"`
	Algorithm    *string  `json:"algorithm,omitempty"`

	// Schema v3 statistical fields.
	MedianAmount *float64 `json:"median_amount,omitempty"`
	Percentile10 *float64 `json:"percentile_10,omitempty"`
	Percentile90 *float64 `json:"percentile_90,omitempty"`
	SampleCount  *string  `json:"sample_count,omitempty"`

	// Schema v2 only.
	EstimatedAmount *float64 `json:"estimated_amount,omitempty"`
}

// Meaningful reports whether the charge carries at least one of a dollar
// amount, a percentage, or an algorithm description.
func (pc *PayerCharge) Meaningful() bool {
	return pc.DollarAmount != nil || pc.Percentage != nil || pc.Algorithm != nil ||
		pc.EstimatedAmount != nil || pc.MedianAmount != nil
}

// SettingCharge groups every charge an item has in one care setting.
type SettingCharge struct {
	Setting        Setting
	GrossCharge    *float64
	DiscountedCash *float64
	MinNegotiated  *float64
	MaxNegotiated  *float64
	PayerCharges   []PayerCharge
	Modifiers      []string
	Notes          *string
}

// ChargeItem is one billable item or service, format-agnostic. Every
// parser produces these; the normalizer fans each one out into stored
// documents, one per setting charge.
type ChargeItem struct {
	Description    string
	Codes          []CodeInformation
	DrugInfo       *DrugInfo
	SettingCharges []SettingCharge
}
