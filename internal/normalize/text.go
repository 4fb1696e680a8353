// Package normalize converts parser output into the canonical stored
// documents: code and name cleanup, primary-code resolution, and the
// per-setting fan-out.
package normalize

import (
	"regexp"
	"strings"

	"github.com/gyeh/mrfingest/internal/model"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)
	nonSearchable   = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// NormalizeCode uppercases a billing code and strips everything outside
// A-Z0-9, so "00904-6719-61" and "00904 6719 61" key identically.
// Returns "" when nothing survives.
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(s), "")
}

// NormalizeName lowercases, collapses whitespace, and trims. Used as
// the match key for hospital and payer names.
func NormalizeName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return multiSpace.ReplaceAllString(s, " ")
}

// SearchText builds the clean text field the procedure search service
// indexes: the description with punctuation flattened, followed by the
// item's billing codes.
func SearchText(description string, codes []model.CodeInformation) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(nonSearchable.ReplaceAllString(strings.ToLower(description), " ")))
	for _, ci := range codes {
		if code := NormalizeCode(ci.Code); code != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.ToLower(code))
		}
	}
	return b.String()
}
