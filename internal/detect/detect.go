// Package detect classifies an MRF file from its size and a bounded
// prefix, without fully parsing it. Classification picks the parser;
// the version hint picks which schema fields that parser favors.
package detect

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is the detected MRF dialect.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSVTall Format = "csv-tall"
	FormatCSVWide Format = "csv-wide"
	FormatVendor  Format = "vendor"
)

// Version is a lightweight schema-version hint.
type Version string

const (
	VersionV2      Version = "v2"
	VersionV3      Version = "v3"
	VersionUnknown Version = "unknown"
)

// ErrUnknownFormat means the file is neither JSON-shaped nor CSV-shaped.
// Callers fail the one file and move on.
var ErrUnknownFormat = errors.New("unknown MRF format")

// Detection describes a classified file.
type Detection struct {
	Format      Format
	VersionHint Version
	SizeBytes   int64
	// EstimatedRecords is a projection from marker counts in a 1MB
	// sample, scaled by file size. Approximate by contract; callers
	// must not treat it as authoritative.
	EstimatedRecords int64
}

const (
	prefixBytes = 8 * 1024
	sampleBytes = 1 << 20
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var jsonVersionRe = regexp.MustCompile(`(?i)"version"\s*:\s*"([^"]*)"`)

// vendorCodeKeyRe matches the code|1-style keys of the vendor dialect.
var vendorCodeKeyRe = regexp.MustCompile(`"code\|\d+"`)

// Sniff classifies the file at path.
func Sniff(path string) (*Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	prefix := make([]byte, prefixBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	prefix = bytes.TrimPrefix(prefix[:n], utf8BOM)

	d := &Detection{SizeBytes: info.Size(), VersionHint: VersionUnknown}

	trimmed := bytes.TrimLeft(prefix, " \t\r\n")
	ext := strings.ToLower(filepath.Ext(path))
	jsonShaped := len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')

	switch {
	case jsonShaped || ext == ".json":
		d.Format = classifyJSON(prefix)
		d.VersionHint = jsonVersionHint(prefix)
	case ext == ".csv" || looksLikeCSV(trimmed):
		format, version, err := classifyCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
		}
		d.Format = format
		d.VersionHint = version
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	d.EstimatedRecords = estimateRecords(f, d.Format, info.Size())
	return d, nil
}

// classifyJSON separates the vendor flat-record dialect from standard
// CMS JSON. The vendor export spells its header keys in upper case and
// keys codes as code|1, code|1|type.
func classifyJSON(prefix []byte) Format {
	if bytes.Contains(prefix, []byte(`"HOSPITAL NAME"`)) {
		return FormatVendor
	}
	if vendorCodeKeyRe.Match(prefix) && bytes.Contains(prefix, []byte(`"VERSION"`)) {
		return FormatVendor
	}
	return FormatJSON
}

func jsonVersionHint(prefix []byte) Version {
	m := jsonVersionRe.FindSubmatch(prefix)
	if m == nil {
		return VersionUnknown
	}
	return versionFromString(string(m[1]))
}

// classifyCSV reads the three header rows. Row pair 1/2 yields the
// version hint; the data-header row decides tall vs wide. A file that
// cannot produce three rows is not an MRF CSV.
func classifyCSV(f *os.File) (Format, Version, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", VersionUnknown, err
	}
	br := bufio.NewReaderSize(f, 256*1024)
	if peek, err := br.Peek(3); err == nil && bytes.Equal(peek, utf8BOM) {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	rows := make([][]string, 0, 3)
	for len(rows) < 3 {
		rec, err := r.Read()
		if err != nil {
			return "", VersionUnknown, fmt.Errorf("csv header: %w", err)
		}
		rows = append(rows, rec)
	}

	version := VersionUnknown
	for i, name := range rows[0] {
		if strings.Contains(strings.ToLower(name), "version") && i < len(rows[1]) {
			version = versionFromString(rows[1][i])
			break
		}
	}

	return classifyDataHeader(rows[2]), version, nil
}

// classifyDataHeader decides tall vs wide from the data-column names.
// A bare payer_name column means tall. Payer-scoped columns, where the
// payer and plan ride inside a pipe-delimited header with three or more
// segments, mean wide. Tall is the default: its own pipe columns
// (code|1, standard_charge|gross) never reach three payer segments.
func classifyDataHeader(cols []string) Format {
	wideLeads := map[string]bool{
		"standard_charge":        true,
		"estimated_amount":       true,
		"additional_payer_notes": true,
		"negotiated_dollar":      true,
		"negotiated_percentage":  true,
		"negotiated_algorithm":   true,
		"methodology":            true,
		"median_amount":          true,
	}

	sawWide := false
	for _, col := range cols {
		name := strings.ToLower(strings.TrimSpace(col))
		if name == "payer_name" || name == "payer" {
			return FormatCSVTall
		}
		segs := strings.Split(name, "|")
		if len(segs) < 3 {
			continue
		}
		if wideLeads[segs[0]] {
			sawWide = true
			continue
		}
		for _, seg := range segs[1:] {
			if strings.Contains(seg, "payer") {
				sawWide = true
			}
		}
	}
	if sawWide {
		return FormatCSVWide
	}
	return FormatCSVTall
}

func versionFromString(s string) Version {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "3"):
		return VersionV3
	case strings.HasPrefix(s, "2"):
		return VersionV2
	default:
		return VersionUnknown
	}
}

// looksLikeCSV accepts plain comma-separated text whose extension lies.
func looksLikeCSV(prefix []byte) bool {
	line := prefix
	if i := bytes.IndexByte(prefix, '\n'); i >= 0 {
		line = prefix[:i]
	}
	return len(line) > 0 && bytes.IndexByte(line, 0) < 0 && bytes.IndexByte(line, ',') >= 0
}

// estimateRecords projects a record count from marker density in the
// first megabyte. JSON dialects count "description" keys; CSVs count
// data lines.
func estimateRecords(f *os.File, format Format, size int64) int64 {
	if size <= 0 {
		return 0
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	sample := make([]byte, sampleBytes)
	n, err := io.ReadFull(f, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0
	}
	if n == 0 {
		return 0
	}
	sample = sample[:n]

	var count int64
	switch format {
	case FormatCSVTall, FormatCSVWide:
		lines := int64(bytes.Count(sample, []byte{'\n'}))
		count = lines - 3
	default:
		lowered := bytes.ToLower(sample)
		count = int64(bytes.Count(lowered, []byte(`"description"`)))
	}
	if count <= 0 {
		return 0
	}
	return int64(float64(count) * (float64(size) / float64(n)))
}
