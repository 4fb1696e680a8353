package normalize

import (
	"strings"
	"time"
)

// Date spellings observed in published MRF headers. Zero-padded ISO
// first: it is what the schema asks for and what most files use.
var dateFormats = []string{
	"2006-01-02",
	"2006-1-2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses a header date in any of the observed formats.
// Returns nil for empty or unparseable input; an unreadable date never
// blocks ingestion.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
