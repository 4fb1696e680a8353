package normalize

import (
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/mrfingest/internal/model"
)

// HospitalContext carries the identity and provenance stamped onto
// every document built from one source file in one run.
type HospitalContext struct {
	HospitalID   int64
	Version      string
	SourceSHA256 string
	IngestRunID  uuid.UUID
	IngestedAt   time.Time
}

// BuildDocuments fans one charge item out into stored documents, one
// per setting charge. The primary code is stored normalized so the
// upsert key survives formatting drift between publications; the
// original spellings stay in the codes list.
func BuildDocuments(item *model.ChargeItem, hc HospitalContext) []model.StoredChargeDocument {
	primary, primaryType := ResolvePrimaryCode(item.Codes)
	primary = NormalizeCode(primary)
	search := SearchText(item.Description, item.Codes)

	docs := make([]model.StoredChargeDocument, 0, len(item.SettingCharges))
	for _, sc := range item.SettingCharges {
		doc := model.StoredChargeDocument{
			HospitalID:      hc.HospitalID,
			Description:     item.Description,
			SearchText:      search,
			Setting:         sc.Setting,
			PrimaryCode:     primary,
			PrimaryCodeType: primaryType,
			Codes:           item.Codes,
			GrossCharge:     sc.GrossCharge,
			DiscountedCash:  sc.DiscountedCash,
			MinNegotiated:   sc.MinNegotiated,
			MaxNegotiated:   sc.MaxNegotiated,
			PayerCharges:    keepMeaningful(sc.PayerCharges),
			Modifiers:       sc.Modifiers,
			Notes:           sc.Notes,
			SourceVersion:   hc.Version,
			SourceSHA256:    hc.SourceSHA256,
			IngestRunID:     hc.IngestRunID,
			IngestedAt:      hc.IngestedAt,
		}
		if item.DrugInfo != nil {
			doc.DrugUnit = item.DrugInfo.Unit
			if item.DrugInfo.Type != "" {
				t := item.DrugInfo.Type
				doc.DrugType = &t
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

// keepMeaningful drops payer entries that carry no rate at all: no
// dollar amount, no percentage, no algorithm, no estimate, no median.
func keepMeaningful(pcs []model.PayerCharge) []model.PayerCharge {
	kept := make([]model.PayerCharge, 0, len(pcs))
	for _, pc := range pcs {
		if pc.Meaningful() {
			kept = append(kept, pc)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// BuildModifierDocument converts one parsed modifier record.
func BuildModifierDocument(rec *model.ModifierRecord, hc HospitalContext) model.StoredModifierDocument {
	return model.StoredModifierDocument{
		HospitalID:  hc.HospitalID,
		Code:        rec.Code,
		Description: rec.Description,
		Setting:     rec.Setting,
		Payers:      rec.Payers,
		IngestRunID: hc.IngestRunID,
		IngestedAt:  hc.IngestedAt,
	}
}
