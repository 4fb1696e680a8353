package model

// HospitalMetadata is the file-level header identifying the reporting
// hospital. One row per hospital per ingestion run, independent of
// charge volume; charge documents reference it by hospital ID.
type HospitalMetadata struct {
	Name               string
	Addresses          []string
	LocationNames      []string
	NPIs               []string
	LicenseNumber      *string
	LicenseState       *string
	Version            string
	LastUpdatedOn      string
	Affirmation        string
	ConfirmAffirmation bool
}
