package mrfjson

import (
	"encoding/json"
	"regexp"

	"github.com/gyeh/mrfingest/internal/model"
)

// headerScanBytes is how much of the file the streaming path inspects
// for header metadata. Real files put the header before the charge
// array, well inside this window.
const headerScanBytes = 64 * 1024

// jsonStr captures one JSON string literal including its quotes.
const jsonStr = `("(?:[^"\\]|\\.)*")`

var (
	headerNameRe    = regexp.MustCompile(`"hospital_name"\s*:\s*` + jsonStr)
	headerUpdatedRe = regexp.MustCompile(`"last_updated_on"\s*:\s*` + jsonStr)
	headerVersionRe = regexp.MustCompile(`"version"\s*:\s*` + jsonStr)
	headerLicenseRe = regexp.MustCompile(`"license_number"\s*:\s*` + jsonStr)
	headerStateRe   = regexp.MustCompile(`"state"\s*:\s*` + jsonStr)
)

// decodeJSONString decodes a captured string literal, honoring escapes.
func decodeJSONString(quoted []byte) string {
	var s string
	if err := json.Unmarshal(quoted, &s); err != nil {
		return string(quoted)
	}
	return s
}

// scanHeader extracts partial hospital metadata from the file prefix by
// pattern matching. Used on the streaming path, where the header is
// never parsed as a whole document.
func scanHeader(prefix []byte) *model.HospitalMetadata {
	meta := &model.HospitalMetadata{}

	pick := func(re *regexp.Regexp) string {
		m := re.FindSubmatch(prefix)
		if m == nil {
			return ""
		}
		return sanitize(decodeJSONString(m[1]))
	}

	meta.Name = pick(headerNameRe)
	meta.LastUpdatedOn = pick(headerUpdatedRe)
	meta.Version = pick(headerVersionRe)
	if num := pick(headerLicenseRe); num != "" {
		meta.LicenseNumber = &num
	}
	if st := pick(headerStateRe); st != "" {
		meta.LicenseState = &st
	}
	return meta
}
