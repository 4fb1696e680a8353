// Package parse defines the contract every format-specific MRF parser
// satisfies toward the normalizer. The four parsers (structured JSON,
// tall CSV, wide CSV, vendor JSON) are siblings: each walks its input
// in a single pass and hands back charge items through Callbacks.
package parse

import (
	"context"
	"time"

	"github.com/gyeh/mrfingest/internal/model"
)

// Callbacks receive parsed elements as the parser encounters them.
// Nil callbacks are skipped. An error returned from OnItem or OnModifier
// aborts the parse; warnings do not.
type Callbacks struct {
	// OnItem is called once per accumulated charge item, in file order.
	OnItem func(item *model.ChargeItem, index int) error
	// OnModifier is called once per modifier record (JSON files only).
	OnModifier func(mod *model.ModifierRecord, index int) error
	// OnMetadata is called once when the file header has been read.
	OnMetadata func(meta *model.HospitalMetadata)
	// OnProgress is called periodically with running counts.
	OnProgress func(items int64, bytesRead int64)
	// OnWarning reports a skipped element and why, keyed by its index.
	OnWarning func(index int, msg string)
}

// Options tune a single parse pass.
type Options struct {
	// MaxItems stops the parser after N items; 0 means no limit.
	MaxItems int
	// StreamThreshold is the size in bytes above which the JSON parser
	// streams instead of loading the whole document.
	StreamThreshold int64
}

// Result summarizes a completed parse.
type Result struct {
	Items     int64
	Skipped   int64
	Modifiers int64
	BytesRead int64
	Metadata  *model.HospitalMetadata
	Duration  time.Duration
}

// Parser is implemented by each format-specific parser.
type Parser interface {
	Parse(ctx context.Context, path string, cb Callbacks) (*Result, error)
}
