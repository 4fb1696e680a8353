package mrfcsv

import (
	"testing"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/parse"
)

func TestTall_GroupsConsecutiveRows(t *testing.T) {
	c := runTall(t, tallFixture, parse.Options{})

	if c.res.Items != 2 || len(c.items) != 2 {
		t.Fatalf("items: got %d (emitted %d), want 2", c.res.Items, len(c.items))
	}
	if c.res.Skipped != 0 {
		t.Errorf("skipped: got %d, want 0", c.res.Skipped)
	}

	mri := c.items[0]
	if mri.Description != "MRI Brain w/o Contrast" {
		t.Fatalf("description: got %q", mri.Description)
	}
	if len(mri.Codes) != 2 {
		t.Fatalf("codes: got %v", mri.Codes)
	}
	if mri.Codes[0].Code != "70551" || mri.Codes[0].Type != model.CodeTypeCPT {
		t.Errorf("code 1: got %+v", mri.Codes[0])
	}
	if mri.Codes[1].Code != "611" || mri.Codes[1].Type != model.CodeTypeRC {
		t.Errorf("code 2: got %+v", mri.Codes[1])
	}

	// Three rows, two settings: outpatient twice, inpatient once.
	if len(mri.SettingCharges) != 2 {
		t.Fatalf("setting charges: got %d, want 2", len(mri.SettingCharges))
	}
	out := mri.SettingCharges[0]
	if out.Setting != model.SettingOutpatient {
		t.Errorf("first setting: got %q", out.Setting)
	}
	wantFloat(t, "outpatient gross", out.GrossCharge, 4000)
	wantFloat(t, "outpatient cash", out.DiscountedCash, 2500)
	wantFloat(t, "outpatient min", out.MinNegotiated, 1500)
	wantFloat(t, "outpatient max", out.MaxNegotiated, 4200)
	if len(out.PayerCharges) != 2 {
		t.Fatalf("outpatient payers: got %d, want 2", len(out.PayerCharges))
	}
	acme := out.PayerCharges[0]
	if acme.PayerName != "Acme Health" || acme.PlanName != "PPO" {
		t.Errorf("payer 1: got %q/%q", acme.PayerName, acme.PlanName)
	}
	wantFloat(t, "acme dollar", acme.DollarAmount, 1800)
	if acme.Methodology == nil || *acme.Methodology != "fee schedule" {
		t.Errorf("acme methodology: got %v", acme.Methodology)
	}
	blue := out.PayerCharges[1]
	wantFloat(t, "blue percentage", blue.Percentage, 80)
	if blue.DollarAmount != nil {
		t.Errorf("blue dollar: got %v, want nil", *blue.DollarAmount)
	}

	in := mri.SettingCharges[1]
	if in.Setting != model.SettingInpatient {
		t.Errorf("second setting: got %q", in.Setting)
	}
	wantFloat(t, "inpatient gross", in.GrossCharge, 5000)
	if len(in.PayerCharges) != 1 {
		t.Fatalf("inpatient payers: got %d, want 1", len(in.PayerCharges))
	}
	wantFloat(t, "inpatient acme dollar", in.PayerCharges[0].DollarAmount, 2200)

	drug := c.items[1]
	if drug.Description != "Acetaminophen 325mg" {
		t.Fatalf("description: got %q", drug.Description)
	}
	if drug.DrugInfo == nil {
		t.Fatal("drug info missing")
	}
	wantFloat(t, "drug unit", drug.DrugInfo.Unit, 1)
	if drug.DrugInfo.Type != "EA" {
		t.Errorf("drug type: got %q", drug.DrugInfo.Type)
	}
	if len(drug.SettingCharges) != 1 || drug.SettingCharges[0].Setting != model.SettingBoth {
		t.Fatalf("drug settings: got %+v", drug.SettingCharges)
	}
	// No payer name on the row: gross/cash only, no payer entry.
	if n := len(drug.SettingCharges[0].PayerCharges); n != 0 {
		t.Errorf("drug payers: got %d, want 0", n)
	}
}

func TestTall_NonContiguousRowsSplit(t *testing.T) {
	content := `hospital_name,version
Split Hospital,3.0.0
description,code|1,code|1|type,setting,payer_name,plan_name,standard_charge|negotiated_dollar
Alpha,100,CPT,outpatient,Payer A,Plan,10
Beta,200,CPT,outpatient,Payer A,Plan,20
Alpha,100,CPT,outpatient,Payer B,Plan,30
`
	c := runTall(t, content, parse.Options{})

	// Same key rows separated by another item stay separate items.
	if len(c.items) != 3 {
		t.Fatalf("items: got %d, want 3", len(c.items))
	}
	if c.items[0].Description != "Alpha" || c.items[1].Description != "Beta" || c.items[2].Description != "Alpha" {
		t.Errorf("order: got %q, %q, %q", c.items[0].Description, c.items[1].Description, c.items[2].Description)
	}
	if p := c.items[2].SettingCharges[0].PayerCharges; len(p) != 1 || p[0].PayerName != "Payer B" {
		t.Errorf("reopened item payers: got %+v", p)
	}
}

func TestTall_SettingReturnsToExistingCharge(t *testing.T) {
	content := `hospital_name,version
Return Hospital,3.0.0
description,code|1,code|1|type,setting,payer_name,plan_name,standard_charge|negotiated_dollar
Svc,1,CPT,outpatient,Payer A,Plan,10
Svc,1,CPT,inpatient,Payer A,Plan,20
Svc,1,CPT,outpatient,Payer B,Plan,30
`
	c := runTall(t, content, parse.Options{})

	if len(c.items) != 1 {
		t.Fatalf("items: got %d, want 1", len(c.items))
	}
	scs := c.items[0].SettingCharges
	if len(scs) != 2 {
		t.Fatalf("setting charges: got %d, want 2", len(scs))
	}
	// The third row folds back into the outpatient charge.
	if len(scs[0].PayerCharges) != 2 {
		t.Errorf("outpatient payers: got %d, want 2", len(scs[0].PayerCharges))
	}
	if len(scs[1].PayerCharges) != 1 {
		t.Errorf("inpatient payers: got %d, want 1", len(scs[1].PayerCharges))
	}
}

func TestTall_BadNumericCellsAbsent(t *testing.T) {
	content := `hospital_name,version
Numeric Hospital,2.0.0
description,code|1,code|1|type,setting,gross_charges,discounted_cash,payer_name,plan_name,standard_charge|negotiated_dollar
Svc,1,CPT,outpatient,N/A,,Payer A,Plan,"$1,234.50"
`
	c := runTall(t, content, parse.Options{})

	sc := c.items[0].SettingCharges[0]
	if sc.GrossCharge != nil {
		t.Errorf("gross from N/A: got %v, want nil", *sc.GrossCharge)
	}
	if sc.DiscountedCash != nil {
		t.Errorf("cash from empty: got %v, want nil", *sc.DiscountedCash)
	}
	wantFloat(t, "dollar with currency formatting", sc.PayerCharges[0].DollarAmount, 1234.50)
}

func TestTall_MaxItems(t *testing.T) {
	c := runTall(t, tallFixture, parse.Options{MaxItems: 1})

	if len(c.items) != 1 {
		t.Fatalf("items: got %d, want 1", len(c.items))
	}
	if c.items[0].Description != "MRI Brain w/o Contrast" {
		t.Errorf("kept item: got %q", c.items[0].Description)
	}
}

func TestTall_BareCodeColumns(t *testing.T) {
	content := `hospital_name,version
Bare Hospital,2.0.0
description,code,code_type,setting,gross_charges
Svc,70551,HCPCS,outpatient,50
`
	c := runTall(t, content, parse.Options{})

	codes := c.items[0].Codes
	if len(codes) != 1 || codes[0].Code != "70551" || codes[0].Type != model.CodeTypeHCPCS {
		t.Errorf("codes: got %+v", codes)
	}
}
