package model

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports the structural problems that make an item unusable:
// a missing description, an empty or incomplete code list, or a setting
// charge with no setting and no prices at all. Validation is advisory;
// the pipeline reports and skips invalid items rather than failing the
// whole file.
func (c *ChargeItem) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Description) == "" {
		problems = append(problems, "description is empty")
	}
	if len(c.Codes) == 0 {
		problems = append(problems, "no billing codes")
	}
	for i, ci := range c.Codes {
		if ci.Code == "" || ci.Type == "" {
			problems = append(problems, fmt.Sprintf("code %d incomplete", i))
		}
	}
	if len(c.SettingCharges) == 0 {
		problems = append(problems, "no charges")
	}
	for i, sc := range c.SettingCharges {
		if sc.Setting == "" {
			problems = append(problems, fmt.Sprintf("charge %d has no setting", i))
		}
		if sc.GrossCharge == nil && sc.DiscountedCash == nil && len(sc.PayerCharges) == 0 {
			problems = append(problems, fmt.Sprintf("charge %d has no prices", i))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}
