// mkfixture generates synthetic MRF fixtures in the four supported
// dialects from one deterministic seed list, for parser development and
// manual pipeline runs.
// Usage: go run ./cmd/mkfixture --out testdata --hospital "General Hospital" --items 12
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type procedure struct {
	description string
	code        string
	codeType    string
	revCode     string
	base        float64
}

var procedures = []procedure{
	{"MRI Brain w/o Contrast", "70551", "CPT", "611", 4000},
	{"CT Abdomen w/ Contrast", "74160", "CPT", "352", 2800},
	{"Chest X-Ray 2 Views", "71046", "CPT", "324", 350},
	{"Office Visit Level 3", "99213", "CPT", "", 150},
	{"Emergency Dept Visit Level 4", "99284", "CPT", "450", 1200},
	{"Appendectomy", "44950", "CPT", "360", 18000},
	{"Knee Arthroscopy", "29881", "CPT", "360", 9500},
	{"Acetaminophen 325mg Tab", "00904-6719-61", "NDC", "250", 10},
	{"Normal Newborn Care", "795", "MS-DRG", "", 6200},
	{"Heart Failure w/o CC", "293", "MS-DRG", "", 15400},
	{"Colonoscopy Diagnostic", "45378", "CPT", "750", 3100},
	{"Basic Metabolic Panel", "80048", "CPT", "301", 90},
}

var payers = []struct {
	name string
	plan string
	mult float64
}{
	{"Acme Health", "PPO", 0.45},
	{"Blue Shield", "HMO", 0.40},
	{"Aetna", "Choice", 0.50},
}

var settings = []string{"outpatient", "inpatient", "both"}

func main() {
	out := flag.String("out", "testdata", "output directory")
	hospital := flag.String("hospital", "General Hospital", "hospital name stamped on the fixtures")
	items := flag.Int("items", len(procedures), "items per fixture (cycles the seed list)")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	outputs := []struct {
		name string
		fn   func(path, hospital string, n int) error
	}{
		{"fixture_tall.csv", writeTall},
		{"fixture_wide.csv", writeWide},
		{"fixture_v3.json", writeJSONV3},
		{"fixture_vendor.json", writeVendor},
	}
	for _, o := range outputs {
		path := filepath.Join(*out, o.name)
		if err := o.fn(path, *hospital, *items); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", o.name, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}

func pick(i int) procedure { return procedures[i%len(procedures)] }

func money(base, mult float64) string {
	return strconv.FormatFloat(base*mult, 'f', 2, 64)
}

func writeTall(path, hospital string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	w.Write([]string{"hospital_name", "last_updated_on", "version", "hospital_location", "hospital_address", "license_number|CA",
		"To the best of its knowledge and belief, the hospital has included all applicable standard charge information"})
	w.Write([]string{hospital, "2025-07-01", "3.0.0", "Main Campus", "123 Main St", "H-12345", "true"})
	w.Write([]string{"description", "code|1", "code|1|type", "code|2", "code|2|type", "setting",
		"drug_unit_of_measurement", "drug_type_of_measurement",
		"standard_charge|gross", "standard_charge|discounted_cash", "standard_charge|min", "standard_charge|max",
		"payer_name", "plan_name", "standard_charge|negotiated_dollar", "standard_charge|negotiated_percentage",
		"standard_charge|methodology"})

	for i := 0; i < n; i++ {
		p := pick(i)
		unit, drugType := "", ""
		if p.codeType == "NDC" {
			unit, drugType = "1", "EA"
		}
		code2, code2Type := p.revCode, ""
		if p.revCode != "" {
			code2Type = "RC"
		}

		base := []string{p.description, p.code, p.codeType, code2, code2Type, settings[i%len(settings)],
			unit, drugType,
			money(p.base, 1), money(p.base, 0.6), money(p.base, 0.35), money(p.base, 1.1)}

		// One row per payer; the parser groups consecutive rows of the
		// same item.
		for j, payer := range payers {
			row := append([]string(nil), base...)
			if i%4 == 1 && j == 1 {
				row = append(row, payer.name, payer.plan, "", "80", "percent of total billed charges")
			} else {
				row = append(row, payer.name, payer.plan, money(p.base, payer.mult), "", "fee schedule")
			}
			w.Write(row)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeWide(path, hospital string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	w.Write([]string{"hospital_name", "last_updated_on", "version", "hospital_address"})
	w.Write([]string{hospital, "2025-07-01", "3.0.0", "123 Main St"})

	header := []string{"description", "code|1", "code|1|type", "setting",
		"standard_charge|gross", "standard_charge|discounted_cash"}
	for _, payer := range payers {
		col := strings.ReplaceAll(payer.name, " ", "_")
		header = append(header,
			"standard_charge|"+col+"|"+payer.plan+"|negotiated_dollar",
			"standard_charge|"+col+"|"+payer.plan+"|methodology")
	}
	w.Write(header)

	for i := 0; i < n; i++ {
		p := pick(i)
		row := []string{p.description, p.code, p.codeType, settings[i%len(settings)],
			money(p.base, 1), money(p.base, 0.6)}
		for _, payer := range payers {
			row = append(row, money(p.base, payer.mult), "fee schedule")
		}
		w.Write(row)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSONV3(path, hospital string, n int) error {
	type codeInfo struct {
		Code string `json:"code"`
		Type string `json:"type"`
	}
	type payerInfo struct {
		PayerName   string   `json:"payer_name"`
		PlanName    string   `json:"plan_name"`
		Dollar      *float64 `json:"standard_charge_dollar,omitempty"`
		Percentage  *float64 `json:"standard_charge_percentage,omitempty"`
		Methodology string   `json:"methodology,omitempty"`
	}
	type charge struct {
		Setting        string      `json:"setting"`
		GrossCharge    float64     `json:"gross_charge"`
		DiscountedCash float64     `json:"discounted_cash"`
		Minimum        float64     `json:"minimum"`
		Maximum        float64     `json:"maximum"`
		Payers         []payerInfo `json:"payers_information"`
	}
	type drugInfo struct {
		Unit string `json:"unit"`
		Type string `json:"type"`
	}
	type chargeItem struct {
		Description string     `json:"description"`
		Codes       []codeInfo `json:"code_information"`
		Drug        *drugInfo  `json:"drug_information,omitempty"`
		Charges     []charge   `json:"standard_charges"`
	}
	type modPayer struct {
		PayerName   string `json:"payer_name"`
		PlanName    string `json:"plan_name"`
		Description string `json:"description"`
	}
	type modifier struct {
		Code        string     `json:"code"`
		Description string     `json:"description"`
		Payers      []modPayer `json:"modifier_payer_information"`
	}

	items := make([]chargeItem, 0, n)
	for i := 0; i < n; i++ {
		p := pick(i)
		item := chargeItem{
			Description: p.description,
			Codes:       []codeInfo{{Code: p.code, Type: p.codeType}},
		}
		if p.revCode != "" {
			item.Codes = append(item.Codes, codeInfo{Code: p.revCode, Type: "RC"})
		}
		if p.codeType == "NDC" {
			item.Drug = &drugInfo{Unit: "1", Type: "EA"}
		}

		ch := charge{
			Setting:        settings[i%len(settings)],
			GrossCharge:    p.base,
			DiscountedCash: p.base * 0.6,
			Minimum:        p.base * 0.35,
			Maximum:        p.base * 1.1,
		}
		for j, payer := range payers {
			pi := payerInfo{PayerName: payer.name, PlanName: payer.plan}
			if i%4 == 1 && j == 1 {
				pct := 80.0
				pi.Percentage = &pct
				pi.Methodology = "percent of total billed charges"
			} else {
				amt := p.base * payer.mult
				pi.Dollar = &amt
				pi.Methodology = "fee schedule"
			}
			ch.Payers = append(ch.Payers, pi)
		}
		item.Charges = []charge{ch}
		items = append(items, item)
	}

	doc := map[string]any{
		"hospital_name":     hospital,
		"last_updated_on":   "2025-07-01",
		"version":           "3.0.0",
		"hospital_location": []string{"Main Campus"},
		"hospital_address":  []string{"123 Main St"},
		"license_information": map[string]string{
			"license_number": "H-12345",
			"state":          "CA",
		},
		"affirmation": map[string]any{
			"affirmation":         "true and accurate as of the date indicated",
			"confirm_affirmation": true,
		},
		"standard_charge_information": items,
		"modifier_information": []modifier{
			{Code: "50", Description: "Bilateral procedure", Payers: []modPayer{
				{PayerName: "Acme Health", PlanName: "PPO", Description: "150% of base rate"},
			}},
			{Code: "26", Description: "Professional component", Payers: []modPayer{
				{PayerName: "Blue Shield", PlanName: "HMO", Description: "professional fee only"},
			}},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeVendor(path, hospital string, n int) error {
	records := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		p := pick(i)
		rec := map[string]any{
			"HOSPITAL NAME":         hospital,
			"VERSION":               "2",
			"LAST UPDATED ON":       "2025-07-01",
			"DESCRIPTION":           p.description,
			"code|1":                p.code,
			"code|1|type":           p.codeType,
			"GROSS CHARGE":          money(p.base, 1),
			"DISCOUNTED CASH PRICE": money(p.base, 0.6),
		}
		switch i % len(settings) {
		case 0:
			rec["SETTING"] = "OP"
		case 1:
			rec["SETTING"] = "IP"
		}
		for j, payer := range payers {
			if i%5 == 2 && j == 1 {
				rec["ESTIMATED AMT_"+payer.name] = "VARIABLE"
			} else {
				rec["ESTIMATED AMT_"+payer.name] = money(p.base, payer.mult)
			}
			rec["ESTIMATED AMT IP_"+payer.name] = money(p.base, payer.mult*1.2)
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
