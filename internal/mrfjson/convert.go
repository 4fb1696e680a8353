package mrfjson

import (
	"strings"

	"github.com/gyeh/mrfingest/internal/model"
)

// sanitize replaces invalid UTF-8 sequences, which show up in files
// exported from legacy hospital systems.
func sanitize(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (sci *standardChargeInformation) toModel() *model.ChargeItem {
	item := &model.ChargeItem{
		Description: sanitize(sci.Description),
	}

	for _, ci := range sci.CodeInformation {
		if ci.Code == "" {
			continue
		}
		item.Codes = append(item.Codes, model.CodeInformation{
			Code: sanitize(ci.Code),
			Type: model.ParseCodeType(ci.Type),
		})
	}

	if di := sci.DrugInformation; di != nil {
		item.DrugInfo = &model.DrugInfo{
			Unit: di.Unit.Value,
			Type: di.Type,
		}
	}

	for i := range sci.StandardCharges {
		sc := &sci.StandardCharges[i]

		charge := model.SettingCharge{
			Setting:        model.ParseSetting(sc.Setting),
			GrossCharge:    sc.GrossCharge,
			DiscountedCash: sc.DiscountedCash,
			MinNegotiated:  sc.Minimum,
			MaxNegotiated:  sc.Maximum,
			Modifiers:      sc.ModifierCode,
			Notes:          sc.AdditionalGenericNotes,
		}
		// v2 publishes gross charges as strings under a plural key.
		if charge.GrossCharge == nil && sc.GrossCharges != nil {
			charge.GrossCharge = sc.GrossCharges.Value
		}

		for _, pi := range sc.PayersInformation {
			if pi.PayerName == "" {
				continue
			}
			charge.PayerCharges = append(charge.PayerCharges, model.PayerCharge{
				PayerName:       sanitize(pi.PayerName),
				PlanName:        sanitize(pi.PlanName),
				Methodology:     nonEmpty(pi.Methodology),
				DollarAmount:    pi.StandardChargeDollar,
				Percentage:      pi.StandardChargePercentage,
				Algorithm:       pi.StandardChargeAlgorithm,
				MedianAmount:    pi.MedianAmount,
				Percentile10:    pi.Percentile10th,
				Percentile90:    pi.Percentile90th,
				SampleCount:     pi.Count.Value,
				EstimatedAmount: pi.EstimatedAmount,
			})
		}

		item.SettingCharges = append(item.SettingCharges, charge)
	}

	return item
}

func (mi *modifierInformation) toModel() *model.ModifierRecord {
	rec := &model.ModifierRecord{
		Code:        sanitize(mi.Code),
		Description: sanitize(mi.Description),
		Setting:     mi.Setting,
	}
	for _, mp := range mi.ModifierPayerInformation {
		rec.Payers = append(rec.Payers, model.ModifierPayerScope{
			PayerName:   sanitize(mp.PayerName),
			PlanName:    sanitize(mp.PlanName),
			Description: sanitize(mp.Description),
		})
	}
	return rec
}

func (h *hospitalHeader) toModel() *model.HospitalMetadata {
	meta := &model.HospitalMetadata{
		Name:          sanitize(h.HospitalName),
		Addresses:     h.HospitalAddress,
		NPIs:          h.Type2NPI,
		Version:       h.Version,
		LastUpdatedOn: h.LastUpdatedOn,
	}

	// v3 lists location_name, v2 hospital_location.
	meta.LocationNames = h.LocationName
	if len(meta.LocationNames) == 0 {
		meta.LocationNames = h.HospitalLocation
	}

	if h.LicenseInformation.LicenseNumber != nil || h.LicenseInformation.State != "" {
		meta.LicenseNumber = h.LicenseInformation.LicenseNumber
		meta.LicenseState = nonEmpty(h.LicenseInformation.State)
	}

	switch {
	case h.Attestation.Attestation != "":
		meta.Affirmation = h.Attestation.Attestation
		meta.ConfirmAffirmation = h.Attestation.ConfirmAttestation
	case h.Affirmation.Affirmation != "":
		meta.Affirmation = h.Affirmation.Affirmation
		meta.ConfirmAffirmation = h.Affirmation.ConfirmAffirmation
	case h.Attestation.Affirmation != "":
		meta.Affirmation = h.Attestation.Affirmation
		meta.ConfirmAffirmation = h.Attestation.ConfirmAffirmation
	}

	return meta
}
