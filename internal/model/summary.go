package model

import "time"

// IngestSummary captures metrics from a single file ingest run.
type IngestSummary struct {
	FilePath          string
	FileSHA256        string
	Format            string
	VersionHint       string
	HospitalID        int64
	IngestRunID       string
	ItemsParsed       int64
	ItemsSkipped      int64
	ModifiersParsed   int64
	DocsInserted      int64
	DocsModified      int64
	WriteErrors       int64
	DocsByPrimaryType map[string]int64
	DurationParse     time.Duration
	DurationPersist   time.Duration
	DurationTotal     time.Duration
}
