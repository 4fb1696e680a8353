package mrfcsv

import (
	"regexp"
	"strconv"
	"strings"
)

// Logical field names. Parsers ask for fields by these names; the alias
// table maps them onto whatever the file actually calls its columns.
const (
	fieldDescription  = "description"
	fieldSetting      = "setting"
	fieldModifiers    = "modifiers"
	fieldPayerName    = "payer_name"
	fieldPlanName     = "plan_name"
	fieldGross        = "gross"
	fieldCash         = "discounted_cash"
	fieldMin          = "min"
	fieldMax          = "max"
	fieldDollar       = "negotiated_dollar"
	fieldPercentage   = "negotiated_percentage"
	fieldAlgorithm    = "negotiated_algorithm"
	fieldMethodology  = "methodology"
	fieldEstimated    = "estimated_amount"
	fieldMedian       = "median_amount"
	fieldPercentile10 = "10th_percentile"
	fieldPercentile90 = "90th_percentile"
	fieldCount        = "count"
	fieldNotes        = "generic_notes"
	fieldDrugUnit     = "drug_unit"
	fieldDrugType     = "drug_type"
	fieldCode         = "code"
	fieldCodeType     = "code_type"
)

// fieldAliases lists, per logical field, the header spellings seen in
// published files, in lookup order. The first alias present in the
// header row wins.
var fieldAliases = map[string][]string{
	fieldDescription:  {"description"},
	fieldSetting:      {"setting", "billing_class"},
	fieldModifiers:    {"modifiers", "modifier"},
	fieldPayerName:    {"payer_name", "payer"},
	fieldPlanName:     {"plan_name", "plan"},
	fieldGross:        {"standard_charge|gross", "gross_charge", "gross_charges"},
	fieldCash:         {"standard_charge|discounted_cash", "discounted_cash", "discounted_cash_price"},
	fieldMin:          {"standard_charge|min", "de-identified_min_negotiated_charge", "minimum"},
	fieldMax:          {"standard_charge|max", "de-identified_max_negotiated_charge", "maximum"},
	fieldDollar:       {"standard_charge|negotiated_dollar", "negotiated_dollar", "standard_charge_dollar"},
	fieldPercentage:   {"standard_charge|negotiated_percentage", "negotiated_percentage", "standard_charge_percentage"},
	fieldAlgorithm:    {"standard_charge|negotiated_algorithm", "negotiated_algorithm", "standard_charge_algorithm"},
	fieldMethodology:  {"standard_charge|methodology", "methodology"},
	fieldEstimated:    {"estimated_amount"},
	fieldMedian:       {"standard_charge|median", "median_amount", "median"},
	fieldPercentile10: {"standard_charge|10th_percentile", "10th_percentile"},
	fieldPercentile90: {"standard_charge|90th_percentile", "90th_percentile"},
	fieldCount:        {"count", "sample_count"},
	fieldNotes:        {"additional_generic_notes", "additional_notes"},
	fieldDrugUnit:     {"drug_unit_of_measurement"},
	fieldDrugType:     {"drug_type_of_measurement"},
	fieldCode:         {"code"},
	fieldCodeType:     {"code_type", "code|type"},
}

// maxCodePairs caps how many indexed code|N pairs one row may carry.
const maxCodePairs = 10

var codeColRe = regexp.MustCompile(`^code\|\[?(\d+)\]?$`)

// normalizeHeader lower-cases and trims one header cell so minor naming
// drift between files still resolves.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

// parseFloat parses a numeric cell. Empty and non-numeric cells are
// absent, never zero and never an error; thousands separators are
// tolerated.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
