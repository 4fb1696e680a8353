package mrfcsv

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/parse"
)

const progressEvery = 5000

// TallParser reads the layout where every data row carries one payer
// entry for one item. Consecutive rows sharing (description, codes)
// fold into a single item; a row with a setting value the item has not
// seen yet opens a new setting charge inside it.
type TallParser struct {
	log  zerolog.Logger
	opts parse.Options
}

func NewTall(log zerolog.Logger, opts parse.Options) *TallParser {
	return &TallParser{log: log, opts: opts}
}

var _ parse.Parser = (*TallParser)(nil)

func (p *TallParser) Parse(ctx context.Context, path string, cb parse.Callbacks) (*parse.Result, error) {
	start := time.Now()

	fr, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	if err := fr.readHeader(); err != nil {
		return nil, err
	}

	res := &parse.Result{Metadata: fr.meta}
	if cb.OnMetadata != nil {
		cb.OnMetadata(fr.meta)
	}

	var (
		cur    *model.ChargeItem
		curKey string
		index  int
	)

	flush := func() error {
		if cur == nil {
			return nil
		}
		item := cur
		cur = nil
		res.Items++
		if cb.OnItem != nil {
			if err := cb.OnItem(item, index); err != nil {
				return err
			}
		}
		index++
		if cb.OnProgress != nil && res.Items%progressEvery == 0 {
			cb.OnProgress(res.Items, fr.count.n)
		}
		return nil
	}

	for {
		if fr.row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if p.opts.MaxItems > 0 && res.Items >= int64(p.opts.MaxItems) {
			break
		}

		row, err := fr.csv.Read()
		if err == io.EOF {
			if err := flush(); err != nil {
				return nil, err
			}
			break
		}
		fr.row++
		if err != nil {
			// Lazy quoting absorbs bad lines, so a mid-file error is the
			// reader itself failing.
			return nil, fmt.Errorf("read row %d: %w", fr.row, err)
		}
		if emptyRow(row) {
			continue
		}

		key := tallKey(fr.cols, row)
		switch {
		case cur == nil:
			cur = startItem(fr.cols, row)
			curKey = key
		case key == curKey:
			accumulate(cur, fr.cols, row)
		default:
			if err := flush(); err != nil {
				return nil, err
			}
			cur = startItem(fr.cols, row)
			curKey = key
		}
	}

	res.BytesRead = fr.count.n
	res.Duration = time.Since(start)
	p.log.Debug().
		Str("path", path).
		Int64("items", res.Items).
		Int64("skipped", res.Skipped).
		Msg("tall csv parse complete")
	return res, nil
}

// tallKey identifies the item a row belongs to. Setting is deliberately
// excluded: rows for the same service in different settings still
// describe one item.
func tallKey(cols *columns, row []string) string {
	var b strings.Builder
	b.WriteString(cols.value(row, fieldDescription))
	for _, ci := range cols.codeList(row) {
		b.WriteByte(0x1f)
		b.WriteString(ci.Code)
		b.WriteByte(0x1e)
		b.WriteString(string(ci.Type))
	}
	return b.String()
}

// startItem builds a new item from the first row of a group.
func startItem(cols *columns, row []string) *model.ChargeItem {
	item := &model.ChargeItem{
		Description: cols.value(row, fieldDescription),
		Codes:       cols.codeList(row),
	}
	if unit := parseFloat(cols.value(row, fieldDrugUnit)); unit != nil {
		item.DrugInfo = &model.DrugInfo{Unit: unit, Type: cols.value(row, fieldDrugType)}
	}
	accumulate(item, cols, row)
	return item
}

// accumulate folds one row into the item: find or open the setting
// charge for the row's setting, then append the row's payer entry.
func accumulate(item *model.ChargeItem, cols *columns, row []string) {
	setting := model.ParseSetting(cols.value(row, fieldSetting))

	var sc *model.SettingCharge
	for i := range item.SettingCharges {
		if item.SettingCharges[i].Setting == setting {
			sc = &item.SettingCharges[i]
			break
		}
	}
	if sc == nil {
		item.SettingCharges = append(item.SettingCharges, model.SettingCharge{
			Setting:        setting,
			GrossCharge:    parseFloat(cols.value(row, fieldGross)),
			DiscountedCash: parseFloat(cols.value(row, fieldCash)),
			MinNegotiated:  parseFloat(cols.value(row, fieldMin)),
			MaxNegotiated:  parseFloat(cols.value(row, fieldMax)),
			Modifiers:      splitModifiers(cols.value(row, fieldModifiers)),
			Notes:          nonEmpty(cols.value(row, fieldNotes)),
		})
		sc = &item.SettingCharges[len(item.SettingCharges)-1]
	}

	if pc := payerFromRow(cols, row); pc != nil {
		sc.PayerCharges = append(sc.PayerCharges, *pc)
	}
}

// payerFromRow returns the row's payer entry, or nil when the row has
// no payer name (hospital-wide rows carry gross/cash amounts only).
func payerFromRow(cols *columns, row []string) *model.PayerCharge {
	name := cols.value(row, fieldPayerName)
	if name == "" {
		return nil
	}
	return &model.PayerCharge{
		PayerName:       name,
		PlanName:        cols.value(row, fieldPlanName),
		Methodology:     nonEmpty(cols.value(row, fieldMethodology)),
		DollarAmount:    parseFloat(cols.value(row, fieldDollar)),
		Percentage:      parseFloat(cols.value(row, fieldPercentage)),
		Algorithm:       nonEmpty(cols.value(row, fieldAlgorithm)),
		MedianAmount:    parseFloat(cols.value(row, fieldMedian)),
		Percentile10:    parseFloat(cols.value(row, fieldPercentile10)),
		Percentile90:    parseFloat(cols.value(row, fieldPercentile90)),
		SampleCount:     nonEmpty(cols.value(row, fieldCount)),
		EstimatedAmount: parseFloat(cols.value(row, fieldEstimated)),
	}
}

func splitModifiers(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
