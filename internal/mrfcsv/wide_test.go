package mrfcsv

import (
	"reflect"
	"testing"

	"github.com/gyeh/mrfingest/internal/parse"
)

const wideFixture = `hospital_name,last_updated_on,version
Community Medical Center,2025-06-15,2.0.0
description,code|1,code|1|type,setting,standard_charge|gross,standard_charge|discounted_cash,standard_charge|min,standard_charge|max,standard_charge|Acme_Health|PPO|negotiated_dollar,standard_charge|Acme_Health|PPO|negotiated_percentage,standard_charge|Acme_Health|PPO|negotiated_algorithm,standard_charge|Acme_Health|PPO|methodology,estimated_amount|Acme_Health|PPO,standard_charge|Blue_Shield|HMO|negotiated_dollar,standard_charge|Blue_Shield|HMO|methodology,additional_generic_notes
Chest X-Ray 2 Views,71046,CPT,outpatient,350,200,150,400,210.5,,,fee schedule,205,,,see notes
Knee Arthroscopy,29881,CPT,outpatient,12000,9500,,,,,per diem rate,case rate,,,,
`

func TestWide_PayerColumnGroups(t *testing.T) {
	c := runWide(t, wideFixture, parse.Options{})

	if c.meta.Name != "Community Medical Center" || c.meta.Version != "2.0.0" {
		t.Errorf("metadata: got %q / %q", c.meta.Name, c.meta.Version)
	}
	if len(c.items) != 2 {
		t.Fatalf("items: got %d, want 2", len(c.items))
	}

	xray := c.items[0]
	if len(xray.SettingCharges) != 1 {
		t.Fatalf("setting charges: got %d, want 1", len(xray.SettingCharges))
	}
	sc := xray.SettingCharges[0]
	wantFloat(t, "gross", sc.GrossCharge, 350)
	wantFloat(t, "cash", sc.DiscountedCash, 200)
	if sc.Notes == nil || *sc.Notes != "see notes" {
		t.Errorf("notes: got %v", sc.Notes)
	}

	// Blue Shield's group is blank for this row, so only Acme appears.
	if len(sc.PayerCharges) != 1 {
		t.Fatalf("payers: got %+v, want 1", sc.PayerCharges)
	}
	acme := sc.PayerCharges[0]
	if acme.PayerName != "Acme Health" || acme.PlanName != "PPO" {
		t.Errorf("payer name: got %q/%q", acme.PayerName, acme.PlanName)
	}
	wantFloat(t, "acme dollar", acme.DollarAmount, 210.5)
	wantFloat(t, "acme estimated", acme.EstimatedAmount, 205)
	if acme.Methodology == nil || *acme.Methodology != "fee schedule" {
		t.Errorf("acme methodology: got %v", acme.Methodology)
	}

	knee := c.items[1]
	kp := knee.SettingCharges[0].PayerCharges
	if len(kp) != 1 {
		t.Fatalf("knee payers: got %+v, want 1", kp)
	}
	if kp[0].Algorithm == nil || *kp[0].Algorithm != "per diem rate" {
		t.Errorf("knee algorithm: got %v", kp[0].Algorithm)
	}
	if kp[0].DollarAmount != nil {
		t.Errorf("knee dollar: got %v, want nil", *kp[0].DollarAmount)
	}
}

func TestWide_LeadingTokenHeaders(t *testing.T) {
	content := `hospital_name,version
Lead Hospital,3.0.0
description,code|1,code|1|type,setting,negotiated_dollar|Aetna|Gold,estimated_amount|Aetna|Gold,methodology|Aetna|Gold
Svc,1,CPT,outpatient,99.5,101,fee schedule
`
	c := runWide(t, content, parse.Options{})

	if len(c.items) != 1 {
		t.Fatalf("items: got %d, want 1", len(c.items))
	}
	pcs := c.items[0].SettingCharges[0].PayerCharges
	if len(pcs) != 1 {
		t.Fatalf("payers: got %+v, want 1", pcs)
	}
	if pcs[0].PayerName != "Aetna" || pcs[0].PlanName != "Gold" {
		t.Errorf("payer: got %q/%q", pcs[0].PayerName, pcs[0].PlanName)
	}
	wantFloat(t, "dollar", pcs[0].DollarAmount, 99.5)
	wantFloat(t, "estimated", pcs[0].EstimatedAmount, 101)
	if pcs[0].Methodology == nil || *pcs[0].Methodology != "fee schedule" {
		t.Errorf("methodology: got %v", pcs[0].Methodology)
	}
}

// The tall and wide layouts below encode identical data; both parsers
// must hand the normalizer the same items.
func TestWide_MatchesTallForSameData(t *testing.T) {
	tall := `hospital_name,version
Equiv Hospital,3.0.0
description,code|1,code|1|type,setting,standard_charge|gross,standard_charge|discounted_cash,standard_charge|min,standard_charge|max,payer_name,plan_name,standard_charge|negotiated_dollar,standard_charge|negotiated_percentage,standard_charge|methodology
Chest X-Ray 2 Views,71046,CPT,outpatient,350,200,150,400,Acme Health,PPO,210.5,,fee schedule
Chest X-Ray 2 Views,71046,CPT,outpatient,350,200,150,400,Blue Shield,HMO,,80,percent of total billed charges
`
	wide := `hospital_name,version
Equiv Hospital,3.0.0
description,code|1,code|1|type,setting,standard_charge|gross,standard_charge|discounted_cash,standard_charge|min,standard_charge|max,standard_charge|Acme_Health|PPO|negotiated_dollar,standard_charge|Acme_Health|PPO|negotiated_percentage,standard_charge|Acme_Health|PPO|methodology,standard_charge|Blue_Shield|HMO|negotiated_dollar,standard_charge|Blue_Shield|HMO|negotiated_percentage,standard_charge|Blue_Shield|HMO|methodology
Chest X-Ray 2 Views,71046,CPT,outpatient,350,200,150,400,210.5,,fee schedule,,80,percent of total billed charges
`
	ct := runTall(t, tall, parse.Options{})
	cw := runWide(t, wide, parse.Options{})

	if len(ct.items) != 1 || len(cw.items) != 1 {
		t.Fatalf("items: tall %d, wide %d, want 1 each", len(ct.items), len(cw.items))
	}
	if !reflect.DeepEqual(ct.items[0], cw.items[0]) {
		t.Errorf("parsers disagree:\ntall: %+v\nwide: %+v", ct.items[0], cw.items[0])
	}
}

func TestWide_NoPayerGroupsStillParses(t *testing.T) {
	content := `hospital_name,version
Gross Only Hospital,2.0.0
description,code|1,code|1|type,setting,gross_charges
Svc,1,CPT,outpatient,75
`
	c := runWide(t, content, parse.Options{})

	if len(c.items) != 1 {
		t.Fatalf("items: got %d, want 1", len(c.items))
	}
	sc := c.items[0].SettingCharges[0]
	wantFloat(t, "gross", sc.GrossCharge, 75)
	if len(sc.PayerCharges) != 0 {
		t.Errorf("payers: got %+v, want none", sc.PayerCharges)
	}
}
