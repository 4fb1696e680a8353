package mrfjson

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexFloat tolerates number fields published as strings, with or
// without thousands separators. Empty strings and unparseable values
// decode to nil rather than erroring: absent beats aborted.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		f.Value = &num
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		cleaned := strings.ReplaceAll(strings.TrimSpace(str), ",", "")
		if cleaned == "" {
			f.Value = nil
			return nil
		}
		if num, err := strconv.ParseFloat(cleaned, 64); err == nil {
			f.Value = &num
		}
		return nil
	}
	// null or some other shape
	f.Value = nil
	return nil
}

// flexString is the mirror case: string fields published as bare
// numbers decode to their literal text.
type flexString struct {
	Value *string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str != "" {
			f.Value = &str
		}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		s := num.String()
		f.Value = &s
	}
	return nil
}

type codeInformation struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

type drugInformation struct {
	Unit flexFloat `json:"unit"`
	Type string    `json:"type"`
}

type payerInformation struct {
	PayerName                string     `json:"payer_name"`
	PlanName                 string     `json:"plan_name"`
	AdditionalPayerNotes     *string    `json:"additional_payer_notes,omitempty"`
	StandardChargeDollar     *float64   `json:"standard_charge_dollar,omitempty"`
	StandardChargeAlgorithm  *string    `json:"standard_charge_algorithm,omitempty"`
	StandardChargePercentage *float64   `json:"standard_charge_percentage,omitempty"`
	EstimatedAmount          *float64   `json:"estimated_amount,omitempty"` // v2
	MedianAmount             *float64   `json:"median_amount,omitempty"`
	Percentile10th           *float64   `json:"10th_percentile,omitempty"`
	Percentile90th           *float64   `json:"90th_percentile,omitempty"`
	Count                    flexString `json:"count"`
	Methodology              string     `json:"methodology"`
}

type standardCharge struct {
	Minimum                *float64           `json:"minimum,omitempty"`
	Maximum                *float64           `json:"maximum,omitempty"`
	GrossCharge            *float64           `json:"gross_charge,omitempty"`
	GrossCharges           *flexFloat         `json:"gross_charges,omitempty"` // v2 string format
	DiscountedCash         *float64           `json:"discounted_cash,omitempty"`
	Setting                string             `json:"setting"`
	ModifierCode           []string           `json:"modifier_code,omitempty"`
	PayersInformation      []payerInformation `json:"payers_information,omitempty"`
	AdditionalGenericNotes *string            `json:"additional_generic_notes,omitempty"`
}

type standardChargeInformation struct {
	Description     string            `json:"description"`
	DrugInformation *drugInformation  `json:"drug_information,omitempty"`
	CodeInformation []codeInformation `json:"code_information"`
	StandardCharges []standardCharge  `json:"standard_charges"`
}

type modifierPayerInformation struct {
	PayerName   string `json:"payer_name"`
	PlanName    string `json:"plan_name"`
	Description string `json:"description"`
}

type modifierInformation struct {
	Description              string                     `json:"description"`
	Code                     string                     `json:"code"`
	Setting                  *string                    `json:"setting,omitempty"`
	ModifierPayerInformation []modifierPayerInformation `json:"modifier_payer_information"`
}

// attestation covers both spellings: v3 says attestation, v2 affirmation.
type attestation struct {
	Attestation        string `json:"attestation"`
	Affirmation        string `json:"affirmation"`
	ConfirmAttestation bool   `json:"confirm_attestation"`
	ConfirmAffirmation bool   `json:"confirm_affirmation"`
	AttesterName       string `json:"attester_name"`
}

type licenseInformation struct {
	LicenseNumber *string `json:"license_number,omitempty"`
	State         string  `json:"state"`
}

// hospitalHeader holds the small header fields, not the large arrays.
type hospitalHeader struct {
	HospitalName       string             `json:"hospital_name"`
	HospitalAddress    []string           `json:"hospital_address"`
	LastUpdatedOn      string             `json:"last_updated_on"`
	Attestation        attestation        `json:"attestation"`
	Affirmation        attestation        `json:"affirmation"` // v2 spelling
	LicenseInformation licenseInformation `json:"license_information"`
	Version            string             `json:"version"`
	LocationName       []string           `json:"location_name"`
	HospitalLocation   []string           `json:"hospital_location"` // v2 spelling
	Type2NPI           []string           `json:"type_2_npi"`
}
