package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/config"
	"github.com/gyeh/mrfingest/internal/db"
	"github.com/gyeh/mrfingest/internal/ingest"
	"github.com/gyeh/mrfingest/internal/model"
)

const (
	testPort     = 15432
	testDB       = "mrftest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB creates a connection pool and applies migrations onto a clean
// schema.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS mrf CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := db.ApplyMigrations(ctx, pool, setupLog()); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func setupLog() zerolog.Logger {
	return zerolog.Nop()
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// ---------- fixtures ----------

const tallCSV = `hospital_name,last_updated_on,version,hospital_location,hospital_address,license_number|CA,"To the best of its knowledge and belief, the hospital has included all applicable standard charge information"
General Hospital,2025-07-01,3.0.0,Main Campus|East Wing,123 Main St,H-12345,true
description,code|1,code|1|type,code|2,code|2|type,setting,drug_unit_of_measurement,drug_type_of_measurement,modifiers,standard_charge|gross,standard_charge|discounted_cash,standard_charge|min,standard_charge|max,payer_name,plan_name,standard_charge|negotiated_dollar,standard_charge|negotiated_percentage,standard_charge|negotiated_algorithm,standard_charge|methodology,estimated_amount,additional_generic_notes
MRI Brain w/o Contrast,70551,CPT,611,RC,outpatient,,,,"4,000.00",2500,1500,4200,Acme Health,PPO,1800,,,fee schedule,,
MRI Brain w/o Contrast,70551,CPT,611,RC,outpatient,,,,"4,000.00",2500,1500,4200,Blue Shield,HMO,,80,,percent of total billed charges,,
MRI Brain w/o Contrast,70551,CPT,611,RC,inpatient,,,,5000,3000,,,Acme Health,PPO,2200,,,fee schedule,,
Acetaminophen 325mg,00904-6719-61,NDC,,,both,1,EA,,10,8,,,,,,,,,,
`

// tallCSVReplacement is a later publication for the same hospital with
// a different item set, for purge-and-reingest coverage.
const tallCSVReplacement = `hospital_name,last_updated_on,version,hospital_location,hospital_address,license_number|CA,affirmation
General Hospital,2025-08-01,3.0.0,Main Campus,123 Main St,H-12345,true
description,code|1,code|1|type,setting,standard_charge|gross,standard_charge|discounted_cash,payer_name,plan_name,standard_charge|negotiated_dollar,standard_charge|methodology
Knee X-Ray 2 Views,73562,CPT,outpatient,500,300,Acme Health,PPO,210,fee schedule
`

const namelessTallCSV = `hospital_name,last_updated_on,version
,2025-07-01,3.0.0
description,code|1,code|1|type,setting,standard_charge|gross
Office Visit Level 3,99213,CPT,outpatient,150
`

const wideCSV = `hospital_name,last_updated_on,version,hospital_address
Community Medical Center,2025-06-15,3.0.0,500 Oak Ave
description,code|1,code|1|type,setting,standard_charge|gross,standard_charge|discounted_cash,standard_charge|Acme_Health|PPO|negotiated_dollar,standard_charge|Acme_Health|PPO|methodology
Chest X-Ray 2 Views,71046,CPT,outpatient,350,200,210.50,fee schedule
`

const jsonV3 = `{
	"hospital_name": "St. Mary Medical Center",
	"last_updated_on": "2025-07-01",
	"version": "3.0.0",
	"hospital_address": ["77 Pine St, Fresno, CA"],
	"license_information": {"license_number": "H-9901", "state": "CA"},
	"attestation": {"attestation": "true and accurate as of the date indicated", "confirm_attestation": true},
	"standard_charge_information": [
		{
			"description": "MRI Brain w/o Contrast",
			"code_information": [
				{"code": "70551", "type": "CPT"},
				{"code": "611", "type": "RC"}
			],
			"standard_charges": [
				{
					"setting": "outpatient",
					"gross_charge": 4000,
					"discounted_cash": 2500,
					"minimum": 1500,
					"maximum": 4200,
					"payers_information": [
						{"payer_name": "Acme Health", "plan_name": "PPO", "standard_charge_dollar": 1800, "methodology": "fee schedule"}
					]
				}
			]
		},
		{
			"description": "Acetaminophen 325mg Tab",
			"drug_information": {"unit": "1", "type": "EA"},
			"code_information": [{"code": "00904-6720-61", "type": "NDC"}],
			"standard_charges": [
				{
					"setting": "both",
					"gross_charge": 12.5,
					"payers_information": [
						{"payer_name": "Acme Health", "plan_name": "HMO", "standard_charge_algorithm": "per diem rate"}
					]
				}
			]
		}
	],
	"modifier_information": [
		{
			"code": "50",
			"description": "Bilateral procedure",
			"modifier_payer_information": [
				{"payer_name": "Acme Health", "plan_name": "PPO", "description": "150% of base rate"}
			]
		}
	]
}`

const vendorJSON = `[
  {
    "HOSPITAL NAME": "Riverside Community Hospital",
    "VERSION": "2",
    "LAST UPDATED ON": "2025-05-01",
    "DESCRIPTION": "MRI Brain w/o Contrast",
    "code|1": "70551",
    "code|1|type": "CPT",
    "SETTING": "OP",
    "GROSS CHARGE": "4,000.00",
    "DISCOUNTED CASH PRICE": "2500",
    "ESTIMATED AMT_Aetna": "1800.50",
    "ESTIMATED AMT_Cigna": "VARIABLE",
    "ESTIMATED AMT IP_Aetna": "2200"
  },
  {
    "HOSPITAL NAME": "Riverside Community Hospital",
    "VERSION": "2",
    "LAST UPDATED ON": "2025-05-01",
    "DESCRIPTION": "Appendectomy",
    "code|1": "44950",
    "code|1|type": "CPT",
    "SETTING": "IP",
    "GROSS CHARGE": "18000",
    "ESTIMATED AMT_Aetna": "999",
    "ESTIMATED AMT IP_Aetna": 2100.25
  }
]`

// ---------- end to end ----------

func TestEndToEnd_TallCSV(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "charges.csv", tallCSV)

	summary, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
	if err != nil {
		t.Fatalf("ingest.Run: %v", err)
	}

	t.Run("summary_counts", func(t *testing.T) {
		if summary.Format != "csv-tall" {
			t.Errorf("format: got %q", summary.Format)
		}
		if summary.ItemsParsed != 2 {
			t.Errorf("items parsed: got %d, want 2", summary.ItemsParsed)
		}
		if summary.ItemsSkipped != 0 {
			t.Errorf("items skipped: got %d, want 0", summary.ItemsSkipped)
		}
		// MRI has charges in two settings; the drug item one.
		if summary.DocsInserted != 3 {
			t.Errorf("docs inserted: got %d, want 3", summary.DocsInserted)
		}
		if summary.DocsModified != 0 || summary.WriteErrors != 0 {
			t.Errorf("modified=%d errors=%d, want 0/0", summary.DocsModified, summary.WriteErrors)
		}
		if summary.DocsByPrimaryType["CPT"] != 2 || summary.DocsByPrimaryType["NDC"] != 1 {
			t.Errorf("docs by type: got %v", summary.DocsByPrimaryType)
		}
		if summary.HospitalID <= 0 {
			t.Errorf("hospital id: got %d", summary.HospitalID)
		}
	})

	t.Run("hospital_row", func(t *testing.T) {
		var (
			name, norm  string
			license     *string
			state       *string
			lastUpdated time.Time
			confirmed   bool
		)
		err := pool.QueryRow(ctx,
			`SELECT name, name_norm, license_number, license_state, last_updated_on, affirmation_confirmed
			 FROM mrf.hospitals WHERE id = $1`, summary.HospitalID).
			Scan(&name, &norm, &license, &state, &lastUpdated, &confirmed)
		if err != nil {
			t.Fatalf("query hospital: %v", err)
		}
		if name != "General Hospital" || norm != "general hospital" {
			t.Errorf("name: got %q norm %q", name, norm)
		}
		if license == nil || *license != "H-12345" {
			t.Errorf("license: got %v", license)
		}
		if state == nil || *state != "CA" {
			t.Errorf("state: got %v", state)
		}
		if got := lastUpdated.Format("2006-01-02"); got != "2025-07-01" {
			t.Errorf("last updated: got %s", got)
		}
		if !confirmed {
			t.Error("affirmation not confirmed")
		}
	})

	t.Run("mri_outpatient_document", func(t *testing.T) {
		var (
			primary, primaryType, searchText string
			gross, cash                      *float64
			payers                           []model.PayerCharge
		)
		err := pool.QueryRow(ctx,
			`SELECT primary_code, primary_code_type, search_text, gross_charge, discounted_cash, payer_charges
			 FROM mrf.charge_documents
			 WHERE hospital_id = $1 AND description = 'MRI Brain w/o Contrast' AND setting = 'outpatient'`,
			summary.HospitalID).
			Scan(&primary, &primaryType, &searchText, &gross, &cash, &payers)
		if err != nil {
			t.Fatalf("query document: %v", err)
		}
		if primary != "70551" || primaryType != "CPT" {
			t.Errorf("primary: got %s/%s", primary, primaryType)
		}
		if searchText != "mri brain w o contrast 70551 611" {
			t.Errorf("search text: got %q", searchText)
		}
		if gross == nil || *gross != 4000 {
			t.Errorf("gross: got %v", gross)
		}
		if cash == nil || *cash != 2500 {
			t.Errorf("cash: got %v", cash)
		}
		if len(payers) != 2 {
			t.Fatalf("payers: got %d, want 2", len(payers))
		}
		if payers[0].PayerName != "Acme Health" || payers[0].DollarAmount == nil || *payers[0].DollarAmount != 1800 {
			t.Errorf("payer 0: got %+v", payers[0])
		}
		if payers[1].PayerName != "Blue Shield" || payers[1].Percentage == nil || *payers[1].Percentage != 80 {
			t.Errorf("payer 1: got %+v", payers[1])
		}
	})

	t.Run("provenance", func(t *testing.T) {
		var sha, runID string
		err := pool.QueryRow(ctx,
			`SELECT DISTINCT source_sha256, ingest_run_id::text FROM mrf.charge_documents WHERE hospital_id = $1`,
			summary.HospitalID).Scan(&sha, &runID)
		if err != nil {
			t.Fatalf("query provenance: %v", err)
		}
		if sha != summary.FileSHA256 {
			t.Errorf("sha: got %s, want %s", sha, summary.FileSHA256)
		}
		if runID != summary.IngestRunID {
			t.Errorf("run id: got %s, want %s", runID, summary.IngestRunID)
		}
	})

	t.Run("ndc_primary_code_normalized", func(t *testing.T) {
		var primary string
		var codes []model.CodeInformation
		err := pool.QueryRow(ctx,
			`SELECT primary_code, codes FROM mrf.charge_documents
			 WHERE hospital_id = $1 AND primary_code_type = 'NDC'`, summary.HospitalID).
			Scan(&primary, &codes)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if primary != "00904671961" {
			t.Errorf("primary code: got %q", primary)
		}
		if len(codes) != 1 || codes[0].Code != "00904-6719-61" {
			t.Errorf("codes should keep original spelling: got %v", codes)
		}
	})
}

func TestEndToEnd_Idempotency(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "charges.csv", tallCSV)
	cfg := &config.Config{FilePath: path}

	first, err := ingest.Run(ctx, pool, setupLog(), cfg, path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.DocsInserted != 3 || first.DocsModified != 0 {
		t.Fatalf("first run: inserted=%d modified=%d", first.DocsInserted, first.DocsModified)
	}

	second, err := ingest.Run(ctx, pool, setupLog(), cfg, path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.DocsInserted != 0 {
		t.Errorf("second run inserted %d docs, want 0", second.DocsInserted)
	}
	if second.DocsModified != 3 {
		t.Errorf("second run modified %d docs, want 3", second.DocsModified)
	}

	var count int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM mrf.charge_documents").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("document count doubled: got %d, want 3", count)
	}

	var hospitals int64
	pool.QueryRow(ctx, "SELECT count(*) FROM mrf.hospitals").Scan(&hospitals)
	if hospitals != 1 {
		t.Errorf("hospital rows: got %d, want 1", hospitals)
	}
}

func TestEndToEnd_JSON(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "mrf.json", jsonV3)

	summary, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
	if err != nil {
		t.Fatalf("ingest.Run: %v", err)
	}

	if summary.Format != "json" || summary.VersionHint != "v3" {
		t.Errorf("classification: got %s/%s", summary.Format, summary.VersionHint)
	}
	if summary.ItemsParsed != 2 || summary.ModifiersParsed != 1 {
		t.Errorf("parsed: items=%d modifiers=%d", summary.ItemsParsed, summary.ModifiersParsed)
	}
	// Two charge documents plus one modifier document.
	if summary.DocsInserted != 3 {
		t.Errorf("docs inserted: got %d, want 3", summary.DocsInserted)
	}

	t.Run("drug_fields", func(t *testing.T) {
		var unit *float64
		var drugType *string
		err := pool.QueryRow(ctx,
			`SELECT drug_unit, drug_type FROM mrf.charge_documents WHERE primary_code_type = 'NDC'`).
			Scan(&unit, &drugType)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if unit == nil || *unit != 1 {
			t.Errorf("drug unit: got %v", unit)
		}
		if drugType == nil || *drugType != "EA" {
			t.Errorf("drug type: got %v", drugType)
		}
	})

	t.Run("modifier_document", func(t *testing.T) {
		var desc string
		var payers []model.ModifierPayerScope
		err := pool.QueryRow(ctx,
			`SELECT description, payers FROM mrf.modifier_documents WHERE code = '50'`).
			Scan(&desc, &payers)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if desc != "Bilateral procedure" {
			t.Errorf("description: got %q", desc)
		}
		if len(payers) != 1 || payers[0].PayerName != "Acme Health" {
			t.Errorf("payers: got %v", payers)
		}
	})
}

func TestEndToEnd_WideCSV(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "wide.csv", wideCSV)

	summary, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
	if err != nil {
		t.Fatalf("ingest.Run: %v", err)
	}
	if summary.Format != "csv-wide" {
		t.Errorf("format: got %q", summary.Format)
	}
	if summary.DocsInserted != 1 {
		t.Errorf("docs inserted: got %d, want 1", summary.DocsInserted)
	}

	var payers []model.PayerCharge
	err = pool.QueryRow(ctx,
		`SELECT payer_charges FROM mrf.charge_documents WHERE description = 'Chest X-Ray 2 Views'`).
		Scan(&payers)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(payers) != 1 {
		t.Fatalf("payers: got %d, want 1", len(payers))
	}
	// Underscores in the header's payer segment read as spaces.
	if payers[0].PayerName != "Acme Health" || payers[0].PlanName != "PPO" {
		t.Errorf("payer identity: got %s/%s", payers[0].PayerName, payers[0].PlanName)
	}
	if payers[0].DollarAmount == nil || *payers[0].DollarAmount != 210.50 {
		t.Errorf("dollar: got %v", payers[0].DollarAmount)
	}
}

func TestEndToEnd_VendorJSON(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "export.json", vendorJSON)

	summary, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
	if err != nil {
		t.Fatalf("ingest.Run: %v", err)
	}
	if summary.Format != "vendor" {
		t.Errorf("format: got %q", summary.Format)
	}
	if summary.ItemsParsed != 2 || summary.DocsInserted != 2 {
		t.Errorf("items=%d docs=%d, want 2/2", summary.ItemsParsed, summary.DocsInserted)
	}

	t.Run("algorithmic_sentinel_preserved", func(t *testing.T) {
		var payers []model.PayerCharge
		err := pool.QueryRow(ctx,
			`SELECT payer_charges FROM mrf.charge_documents
			 WHERE description = 'MRI Brain w/o Contrast' AND setting = 'outpatient'`).
			Scan(&payers)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		byPayer := make(map[string]model.PayerCharge, len(payers))
		for _, p := range payers {
			byPayer[p.PayerName] = p
		}
		aetna, ok := byPayer["Aetna"]
		if !ok || aetna.EstimatedAmount == nil || *aetna.EstimatedAmount != 1800.50 {
			t.Errorf("Aetna: got %+v", aetna)
		}
		cigna, ok := byPayer["Cigna"]
		if !ok || cigna.Algorithm == nil || *cigna.Algorithm != model.AlgorithmicPricing {
			t.Errorf("Cigna algorithm sentinel: got %+v", cigna)
		}
		if cigna.EstimatedAmount != nil {
			t.Errorf("VARIABLE must not become a number: got %v", cigna.EstimatedAmount)
		}
	})

	t.Run("inpatient_record_scoped", func(t *testing.T) {
		var payers []model.PayerCharge
		err := pool.QueryRow(ctx,
			`SELECT payer_charges FROM mrf.charge_documents WHERE description = 'Appendectomy'`).
			Scan(&payers)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(payers) != 1 || payers[0].PayerName != "Aetna" {
			t.Fatalf("payers: got %v", payers)
		}
		if payers[0].EstimatedAmount == nil || *payers[0].EstimatedAmount != 2100.25 {
			t.Errorf("inpatient estimate: got %v", payers[0].EstimatedAmount)
		}
	})
}

func TestEndToEnd_PurgeFirst(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()

	first := writeFixture(t, "first.csv", tallCSV)
	if _, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: first}, first); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	second := writeFixture(t, "second.csv", tallCSVReplacement)
	summary, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: second, PurgeFirst: true}, second)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if summary.DocsInserted != 1 {
		t.Errorf("docs inserted: got %d, want 1", summary.DocsInserted)
	}

	var count int64
	pool.QueryRow(ctx, "SELECT count(*) FROM mrf.charge_documents WHERE hospital_id = $1", summary.HospitalID).Scan(&count)
	if count != 1 {
		t.Errorf("documents after purge+reingest: got %d, want 1", count)
	}

	var desc string
	pool.QueryRow(ctx, "SELECT description FROM mrf.charge_documents WHERE hospital_id = $1", summary.HospitalID).Scan(&desc)
	if desc != "Knee X-Ray 2 Views" {
		t.Errorf("surviving document: got %q", desc)
	}
}

func TestEndToEnd_HospitalNameFallback(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "nameless.csv", namelessTallCSV)

	t.Run("fails_without_override", func(t *testing.T) {
		_, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
		if err == nil {
			t.Fatal("expected resolve error for nameless file")
		}
		var pe *ingest.PipelineError
		if !errors.As(err, &pe) || pe.Phase != "resolve" {
			t.Errorf("expected resolve phase error, got %v", err)
		}
	})

	t.Run("succeeds_with_override", func(t *testing.T) {
		cfg := &config.Config{FilePath: path, HospitalName: "Backfill Hospital"}
		summary, err := ingest.Run(ctx, pool, setupLog(), cfg, path)
		if err != nil {
			t.Fatalf("ingest.Run: %v", err)
		}
		var name string
		pool.QueryRow(ctx, "SELECT name FROM mrf.hospitals WHERE id = $1", summary.HospitalID).Scan(&name)
		if name != "Backfill Hospital" {
			t.Errorf("hospital name: got %q", name)
		}
	})
}

func TestEndToEnd_UnknownFormat(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	path := writeFixture(t, "junk.dat", "no structure here at all\n")

	_, err := ingest.Run(ctx, pool, setupLog(), &config.Config{FilePath: path}, path)
	if err == nil {
		t.Fatal("expected detect error")
	}
	var pe *ingest.PipelineError
	if !errors.As(err, &pe) || pe.Phase != "detect" {
		t.Errorf("expected detect phase error, got %v", err)
	}
}

func TestRunDir(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()

	dir := t.TempDir()
	files := map[string]string{
		"a_tall.csv":    tallCSV,
		"b_vendor.json": vendorJSON,
		"c_bad.csv":     "not an mrf\n",
		"d_notes.txt":   "ignored entirely",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	cfg := &config.Config{DirPath: dir, Workers: 2}
	summaries, err := ingest.RunDir(ctx, pool, setupLog(), cfg)
	if err == nil {
		t.Error("expected joined error for the unparseable file")
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries: got %d, want 2", len(summaries))
	}

	var hospitals, docs int64
	pool.QueryRow(ctx, "SELECT count(*) FROM mrf.hospitals").Scan(&hospitals)
	pool.QueryRow(ctx, "SELECT count(*) FROM mrf.charge_documents").Scan(&docs)
	if hospitals != 2 {
		t.Errorf("hospitals: got %d, want 2", hospitals)
	}
	if docs != 5 {
		t.Errorf("documents: got %d, want 5", docs)
	}
}
