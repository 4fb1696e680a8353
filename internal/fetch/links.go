package fetch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Link is one row of the downloadable-links CSV: a hospital and the URL
// its machine-readable file is published at.
type Link struct {
	HospitalName string
	URL          string
	FileType     string
	Region       string
}

// linkColumns are the required header names, in any order.
var linkColumns = []string{"hospital_name", "mrf_download_url", "file_type", "region"}

// ReadLinks loads the links CSV. Rows without a hospital name or URL
// are dropped; a file yielding no usable rows is an error.
func ReadLinks(path string) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read links header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}
	for _, col := range linkColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("links file missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var links []Link
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read links row: %w", err)
		}
		link := Link{
			HospitalName: cell(row, "hospital_name"),
			URL:          cell(row, "mrf_download_url"),
			FileType:     cell(row, "file_type"),
			Region:       cell(row, "region"),
		}
		if link.HospitalName == "" || link.URL == "" {
			continue
		}
		links = append(links, link)
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no usable rows in %s", path)
	}
	return links, nil
}
