// Package mrfcsv parses the CSV MRF layouts: four header rows (general
// metadata names, their values, data column names, then data), in both
// the tall shape (one row per item and payer) and the wide shape (one
// column per payer and plan).
package mrfcsv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gyeh/mrfingest/internal/model"
)

// countingReader tracks bytes consumed for progress reporting.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// fileReader owns the open file and the CSV decoding state shared by
// both layout parsers.
type fileReader struct {
	file  *os.File
	count *countingReader
	csv   *csv.Reader
	cols  *columns
	meta  *model.HospitalMetadata
	row   int64 // 1-based physical row number
}

func openFile(path string) (*fileReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	count := &countingReader{r: file}
	br := bufio.NewReaderSize(count, 256*1024)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	return &fileReader{file: file, count: count, csv: r}, nil
}

func (fr *fileReader) Close() error {
	return fr.file.Close()
}

// readHeader consumes rows 1-3: hospital metadata names, their values,
// and the data column headers.
func (fr *fileReader) readHeader() error {
	nameRow, err := fr.csv.Read()
	if err != nil {
		return fmt.Errorf("read metadata header row: %w", err)
	}
	fr.row++

	valueRow, err := fr.csv.Read()
	if err != nil {
		return fmt.Errorf("read metadata value row: %w", err)
	}
	fr.row++

	fr.meta = parseMetadataRows(nameRow, valueRow)

	dataHeader, err := fr.csv.Read()
	if err != nil {
		return fmt.Errorf("read data header row: %w", err)
	}
	fr.row++

	fr.cols = resolveColumns(dataHeader)
	return nil
}

// columns resolves logical fields and code pairs against one file's
// data-header row. raw keeps the original casing: wide-format payer
// names live inside header cells and must not be lower-cased.
type columns struct {
	headers []string       // normalized, in file order
	raw     []string       // trimmed only, in file order
	index   map[string]int // normalized name -> position
	fields  map[string]int // logical field -> position
	codes   []codePair
}

type codePair struct {
	codeIdx int
	typeIdx int // -1 when the pair has no type column
}

func resolveColumns(headerRow []string) *columns {
	cols := &columns{index: make(map[string]int), fields: make(map[string]int)}

	for i, h := range headerRow {
		name := normalizeHeader(h)
		cols.headers = append(cols.headers, name)
		cols.raw = append(cols.raw, strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols.index[name]; !dup {
			cols.index[name] = i
		}
	}

	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			if idx, ok := cols.index[alias]; ok {
				cols.fields[field] = idx
				break
			}
		}
	}

	// Indexed code pairs: code|1, code|1|type ... capped. Fall back to
	// a bare code/code_type pair when no indexed columns exist.
	for _, name := range cols.headers {
		m := codeColRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if len(cols.codes) >= maxCodePairs {
			break
		}
		pair := codePair{codeIdx: cols.index[name], typeIdx: -1}
		for _, typeName := range []string{"code|" + m[1] + "|type", "code|[" + m[1] + "]|type"} {
			if idx, ok := cols.index[typeName]; ok {
				pair.typeIdx = idx
				break
			}
		}
		cols.codes = append(cols.codes, pair)
	}
	if len(cols.codes) == 0 {
		if idx, ok := cols.fields[fieldCode]; ok {
			pair := codePair{codeIdx: idx, typeIdx: -1}
			if tIdx, ok := cols.fields[fieldCodeType]; ok {
				pair.typeIdx = tIdx
			}
			cols.codes = append(cols.codes, pair)
		}
	}

	return cols
}

// value returns the trimmed cell for a logical field, empty when the
// field or the cell is missing.
func (c *columns) value(row []string, field string) string {
	idx, ok := c.fields[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// codeList extracts the row's billing codes from the resolved pairs.
func (c *columns) codeList(row []string) []model.CodeInformation {
	var codes []model.CodeInformation
	for _, pair := range c.codes {
		if pair.codeIdx >= len(row) {
			continue
		}
		code := strings.TrimSpace(row[pair.codeIdx])
		if code == "" {
			continue
		}
		ci := model.CodeInformation{Code: code}
		if pair.typeIdx >= 0 && pair.typeIdx < len(row) {
			ci.Type = model.ParseCodeType(row[pair.typeIdx])
		}
		codes = append(codes, ci)
	}
	return codes
}

// parseMetadataRows builds hospital metadata from header rows 1-2.
func parseMetadataRows(nameRow, valueRow []string) *model.HospitalMetadata {
	meta := &model.HospitalMetadata{}

	for i, rawCol := range nameRow {
		if i >= len(valueRow) {
			break
		}
		col := normalizeHeader(rawCol)
		value := strings.TrimSpace(valueRow[i])

		switch {
		case col == "hospital_name":
			meta.Name = value
		case col == "last_updated_on":
			meta.LastUpdatedOn = value
		case col == "version":
			meta.Version = value
		case col == "hospital_location":
			if value != "" {
				meta.LocationNames = strings.Split(value, "|")
			}
		case col == "hospital_address":
			if value != "" {
				meta.Addresses = strings.Split(value, "|")
			}
		case strings.HasPrefix(col, "license_number|"):
			if meta.LicenseNumber == nil && value != "" {
				state := strings.ToUpper(strings.TrimPrefix(col, "license_number|"))
				v := value
				meta.LicenseNumber = &v
				meta.LicenseState = &state
			}
		case col == "license_number":
			if meta.LicenseNumber == nil && value != "" {
				v := value
				meta.LicenseNumber = &v
			}
		case strings.Contains(col, "knowledge and belief"):
			// The affirmation is phrased as a column name; its value is
			// the TRUE/FALSE confirmation.
			meta.Affirmation = strings.TrimSpace(rawCol)
			meta.ConfirmAffirmation = strings.EqualFold(value, "true")
		}
	}

	return meta
}
