// Package mrfjson parses CMS-standard hospital MRF JSON, schema v2 and
// v3. Files at or below the stream threshold are parsed as one
// document; larger files are streamed with bounded memory.
package mrfjson

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/parse"
)

const (
	defaultStreamThreshold = 64 << 20
	streamChunkBytes       = 1 << 20
	progressEvery          = 5000
)

const (
	chargesKey   = `"standard_charge_information"`
	modifiersKey = `"modifier_information"`
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads one CMS JSON MRF per Parse call. Both schema versions
// share the raw types; version-specific fields simply stay nil.
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

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	threshold := p.opts.StreamThreshold
	if threshold <= 0 {
		threshold = defaultStreamThreshold
	}

	res := &parse.Result{}
	if info.Size() <= threshold {
		err = p.parseWhole(ctx, path, cb, res)
	} else {
		err = p.parseStream(ctx, path, cb, res)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Parser) parseStream(ctx context.Context, path string, cb parse.Callbacks, res *parse.Result) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// Header metadata comes from a prefix scan; the state machine only
	// handles the arrays.
	prefix := make([]byte, headerScanBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res.Metadata = scanHeader(prefix[:n])
	if cb.OnMetadata != nil {
		cb.OnMetadata(res.Metadata)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", path, err)
	}

	var cbErr error
	scanner := newArrayScanner([]streamTarget{
		{
			key: []byte(chargesKey),
			onElem: func(raw []byte, index int) {
				if cbErr != nil {
					return
				}
				if p.opts.MaxItems > 0 && res.Items >= int64(p.opts.MaxItems) {
					return
				}
				cbErr = p.emitItem(raw, index, cb, res)
			},
		},
		{
			key: []byte(modifiersKey),
			onElem: func(raw []byte, index int) {
				if cbErr != nil {
					return
				}
				cbErr = p.emitModifier(raw, index, cb, res)
			},
		},
	})

	chunk := make([]byte, streamChunkBytes)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := f.Read(chunk)
		if n > 0 {
			res.BytesRead += int64(n)
			scanner.feed(chunk[:n])
			if cbErr != nil {
				return cbErr
			}
		}
		if scanner.finished() {
			break
		}
		if p.opts.MaxItems > 0 && res.Items >= int64(p.opts.MaxItems) {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	p.log.Debug().
		Int("buffer_high_water", scanner.maxBuffered).
		Int64("items", res.Items).
		Int64("modifiers", res.Modifiers).
		Msg("json stream complete")
	return nil
}
