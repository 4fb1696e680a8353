package mrfcsv

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/mrfingest/internal/model"
	"github.com/gyeh/mrfingest/internal/parse"
)

var widePayerColRe = regexp.MustCompile(`^standard_charge\|([^|]+)\|([^|]+)\|(.+)$`)

// Payer-scoped field tokens a wide header may carry, whether trailing
// (standard_charge|payer|plan|field) or leading (field|payer|plan).
// Anything else pipe-scoped to a payer is ignored.
var wideFieldTokens = map[string]string{
	"negotiated_dollar":     "negotiated_dollar",
	"negotiated_percentage": "negotiated_percentage",
	"negotiated_algorithm":  "negotiated_algorithm",
	"methodology":           "methodology",
	"estimated_amount":      "estimated_amount",
	"median":                "median",
	"median_amount":         "median",
	"10th_percentile":       "10th_percentile",
	"90th_percentile":       "90th_percentile",
	"count":                 "count",
	"sample_count":          "count",
}

// wideGroup holds the column positions for one payer/plan pair.
type wideGroup struct {
	payer string
	plan  string
	cols  map[string]int // field token -> column index
}

// WideParser reads the layout where each payer/plan pair occupies its
// own column group and every data row is one complete item.
type WideParser struct {
	log  zerolog.Logger
	opts parse.Options
}

func NewWide(log zerolog.Logger, opts parse.Options) *WideParser {
	return &WideParser{log: log, opts: opts}
}

var _ parse.Parser = (*WideParser)(nil)

func (p *WideParser) Parse(ctx context.Context, path string, cb parse.Callbacks) (*parse.Result, error) {
	start := time.Now()

	fr, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	if err := fr.readHeader(); err != nil {
		return nil, err
	}

	groups := classifyWide(fr.cols.raw)
	if len(groups) == 0 {
		p.log.Warn().Str("path", path).Msg("wide csv has no payer column groups")
	}

	res := &parse.Result{Metadata: fr.meta}
	if cb.OnMetadata != nil {
		cb.OnMetadata(fr.meta)
	}

	index := 0
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
			break
		}
		fr.row++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", fr.row, err)
		}
		if emptyRow(row) {
			continue
		}

		item := p.itemFromRow(fr.cols, groups, row)
		res.Items++
		if cb.OnItem != nil {
			if err := cb.OnItem(item, index); err != nil {
				return nil, err
			}
		}
		index++
		if cb.OnProgress != nil && res.Items%progressEvery == 0 {
			cb.OnProgress(res.Items, fr.count.n)
		}
	}

	res.BytesRead = fr.count.n
	res.Duration = time.Since(start)
	p.log.Debug().
		Str("path", path).
		Int64("items", res.Items).
		Int64("skipped", res.Skipped).
		Int("payer_groups", len(groups)).
		Msg("wide csv parse complete")
	return res, nil
}

// classifyWide scans the raw data-header row once and groups the
// payer-scoped columns by (payer, plan), preserving file order. Header
// casing is kept: payer and plan segments are display names.
func classifyWide(rawHeaders []string) []*wideGroup {
	var (
		groups []*wideGroup
		byKey  = make(map[string]*wideGroup)
	)
	add := func(payer, plan, field string, idx int) {
		key := payer + "|" + plan
		g := byKey[key]
		if g == nil {
			g = &wideGroup{payer: payer, plan: plan, cols: make(map[string]int)}
			byKey[key] = g
			groups = append(groups, g)
		}
		if _, dup := g.cols[field]; !dup {
			g.cols[field] = idx
		}
	}

	for i, h := range rawHeaders {
		if m := widePayerColRe.FindStringSubmatch(h); m != nil {
			if field, ok := wideFieldTokens[strings.ToLower(strings.TrimSpace(m[3]))]; ok {
				add(m[1], m[2], field, i)
			}
			continue
		}
		// Leading-token form: <field>|<payer>|<plan>.
		if segs := strings.Split(h, "|"); len(segs) == 3 {
			if field, ok := wideFieldTokens[strings.ToLower(strings.TrimSpace(segs[0]))]; ok {
				add(strings.TrimSpace(segs[1]), strings.TrimSpace(segs[2]), field, i)
			}
		}
	}
	return groups
}

// itemFromRow builds one complete item from a wide data row.
func (p *WideParser) itemFromRow(cols *columns, groups []*wideGroup, row []string) *model.ChargeItem {
	item := &model.ChargeItem{
		Description: cols.value(row, fieldDescription),
		Codes:       cols.codeList(row),
	}
	if unit := parseFloat(cols.value(row, fieldDrugUnit)); unit != nil {
		item.DrugInfo = &model.DrugInfo{Unit: unit, Type: cols.value(row, fieldDrugType)}
	}

	sc := model.SettingCharge{
		Setting:        model.ParseSetting(cols.value(row, fieldSetting)),
		GrossCharge:    parseFloat(cols.value(row, fieldGross)),
		DiscountedCash: parseFloat(cols.value(row, fieldCash)),
		MinNegotiated:  parseFloat(cols.value(row, fieldMin)),
		MaxNegotiated:  parseFloat(cols.value(row, fieldMax)),
		Modifiers:      splitModifiers(cols.value(row, fieldModifiers)),
		Notes:          nonEmpty(cols.value(row, fieldNotes)),
	}

	for _, g := range groups {
		if pc := g.payerCharge(row); pc != nil {
			sc.PayerCharges = append(sc.PayerCharges, *pc)
		}
	}

	item.SettingCharges = []model.SettingCharge{sc}
	return item
}

// payerCharge reads this group's cells from one row. Rows where every
// cell in the group is blank yield nothing: that payer simply does not
// cover the item.
func (g *wideGroup) payerCharge(row []string) *model.PayerCharge {
	cell := func(field string) string {
		idx, ok := g.cols[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	pc := model.PayerCharge{
		PayerName:       strings.ReplaceAll(g.payer, "_", " "),
		PlanName:        strings.ReplaceAll(g.plan, "_", " "),
		Methodology:     nonEmpty(cell("methodology")),
		DollarAmount:    parseFloat(cell("negotiated_dollar")),
		Percentage:      parseFloat(cell("negotiated_percentage")),
		Algorithm:       nonEmpty(cell("negotiated_algorithm")),
		MedianAmount:    parseFloat(cell("median")),
		Percentile10:    parseFloat(cell("10th_percentile")),
		Percentile90:    parseFloat(cell("90th_percentile")),
		SampleCount:     nonEmpty(cell("count")),
		EstimatedAmount: parseFloat(cell("estimated_amount")),
	}
	if !pc.Meaningful() {
		return nil
	}
	return &pc
}
