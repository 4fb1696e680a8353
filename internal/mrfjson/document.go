package mrfjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gyeh/mrfingest/internal/parse"
)

// document is the whole-file shape. The two big arrays stay raw so one
// malformed element can be skipped without losing the rest.
type document struct {
	hospitalHeader
	StandardChargeInformation []json.RawMessage `json:"standard_charge_information"`
	ModifierInformation       []json.RawMessage `json:"modifier_information"`
}

func (p *Parser) parseWhole(ctx context.Context, path string, cb parse.Callbacks, res *parse.Result) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	res.BytesRead = int64(len(data))

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	res.Metadata = doc.hospitalHeader.toModel()
	if cb.OnMetadata != nil {
		cb.OnMetadata(res.Metadata)
	}

	for i, raw := range doc.StandardChargeInformation {
		if p.opts.MaxItems > 0 && res.Items >= int64(p.opts.MaxItems) {
			break
		}
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := p.emitItem(raw, i, cb, res); err != nil {
			return err
		}
	}

	for i, raw := range doc.ModifierInformation {
		if err := p.emitModifier(raw, i, cb, res); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) emitItem(raw []byte, index int, cb parse.Callbacks, res *parse.Result) error {
	var sci standardChargeInformation
	if err := json.Unmarshal(raw, &sci); err != nil {
		res.Skipped++
		p.warn(cb, index, fmt.Sprintf("malformed charge element: %v", err))
		return nil
	}

	res.Items++
	if cb.OnItem != nil {
		if err := cb.OnItem(sci.toModel(), index); err != nil {
			return err
		}
	}
	if cb.OnProgress != nil && res.Items%progressEvery == 0 {
		cb.OnProgress(res.Items, res.BytesRead)
	}
	return nil
}

func (p *Parser) emitModifier(raw []byte, index int, cb parse.Callbacks, res *parse.Result) error {
	var mi modifierInformation
	if err := json.Unmarshal(raw, &mi); err != nil {
		res.Skipped++
		p.warn(cb, index, fmt.Sprintf("malformed modifier element: %v", err))
		return nil
	}

	res.Modifiers++
	if cb.OnModifier != nil {
		if err := cb.OnModifier(mi.toModel(), index); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) warn(cb parse.Callbacks, index int, msg string) {
	p.log.Warn().Int("index", index).Msg(msg)
	if cb.OnWarning != nil {
		cb.OnWarning(index, msg)
	}
}
