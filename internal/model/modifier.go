package model

// ModifierRecord is one entry of a JSON file's modifier_information array:
// a billing-code modifier and the payer/plan pairs it applies to.
type ModifierRecord struct {
	Code        string
	Description string
	Setting     *string
	Payers      []ModifierPayerScope
}

// ModifierPayerScope narrows a modifier to one payer/plan pair.
type ModifierPayerScope struct {
	PayerName   string `json:"payer_name"`
	PlanName    string `json:"plan_name"`
	Description string `json:"description,omitempty"`
}
