// Package vendorjson parses the flat-record export published by
// hospitals that ignore the standard schema: a single JSON array of
// objects with upper-case CSV-style keys, where each payer's rate is
// its own arbitrarily named key.
package vendorjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/parse"
)

const progressEvery = 5000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Parser struct {
	log  zerolog.Logger
	opts parse.Options
}

func New(log zerolog.Logger, opts parse.Options) *Parser {
	return &Parser{log: log, opts: opts}
}

var _ parse.Parser = (*Parser)(nil)

func (p *Parser) Parse(ctx context.Context, path string, cb parse.Callbacks) (*parse.Result, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse vendor export %s: %w", filepath.Base(path), err)
	}

	res := &parse.Result{BytesRead: int64(len(data))}
	var (
		cols       []payerColumn
		discovered bool
		index      int
	)

	for i, raw := range records {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if p.opts.MaxItems > 0 && res.Items >= int64(p.opts.MaxItems) {
			break
		}

		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			res.Skipped++
			p.warn(cb, i, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		rec := newRecord(obj)

		// The schema is assumed uniform: header fields and payer keys
		// come from the first record that decodes.
		if !discovered {
			discovered = true
			cols = discoverPayerColumns(obj)
			res.Metadata = metadataFrom(rec)
			if cb.OnMetadata != nil {
				cb.OnMetadata(res.Metadata)
			}
		}

		item := rec.toItem(cols)
		res.Items++
		if cb.OnItem != nil {
			if err := cb.OnItem(item, index); err != nil {
				return nil, err
			}
		}
		index++
		if cb.OnProgress != nil && res.Items%progressEvery == 0 {
			cb.OnProgress(res.Items, res.BytesRead)
		}
	}

	res.Duration = time.Since(start)
	p.log.Debug().
		Str("path", path).
		Int64("items", res.Items).
		Int64("skipped", res.Skipped).
		Int("payer_columns", len(cols)).
		Msg("vendor export parse complete")
	return res, nil
}

func (p *Parser) warn(cb parse.Callbacks, index int, msg string) {
	p.log.Warn().Int("record", index).Msg(msg)
	if cb.OnWarning != nil {
		cb.OnWarning(index, msg)
	}
}

func metadataFrom(r *record) *model.HospitalMetadata {
	meta := &model.HospitalMetadata{
		Name:          r.get("HOSPITAL NAME"),
		Version:       r.get("VERSION"),
		LastUpdatedOn: r.get("LAST UPDATED ON"),
	}
	if v := r.get("HOSPITAL LOCATION"); v != "" {
		meta.LocationNames = splitPipe(v)
	}
	if v := r.get("HOSPITAL ADDRESS"); v != "" {
		meta.Addresses = splitPipe(v)
	}
	if v := r.get("LICENSE NUMBER"); v != "" {
		meta.LicenseNumber = &v
	}
	return meta
}

func splitPipe(v string) []string {
	parts := strings.Split(v, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
