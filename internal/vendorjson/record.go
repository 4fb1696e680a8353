package vendorjson

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gyeh/mrfingest/internal/model"
)

// Payer rate keys. The inpatient prefix is checked first: an outpatient
// key must not also match it.
const (
	ipPayerPrefix = "ESTIMATED AMT IP_"
	opPayerPrefix = "ESTIMATED AMT_"
)

// payerColumn is one discovered payer rate key. The export repeats the
// same keys on every record, so discovery runs once against the first.
type payerColumn struct {
	key   string // record key as published
	payer string
	scope model.Setting
}

func discoverPayerColumns(rec map[string]any) []payerColumn {
	var cols []payerColumn
	for k := range rec {
		up := strings.ToUpper(strings.TrimSpace(k))
		switch {
		case strings.HasPrefix(up, ipPayerPrefix):
			if payer := strings.TrimSpace(k[len(ipPayerPrefix):]); payer != "" {
				cols = append(cols, payerColumn{key: k, payer: payer, scope: model.SettingInpatient})
			}
		case strings.HasPrefix(up, opPayerPrefix):
			if payer := strings.TrimSpace(k[len(opPayerPrefix):]); payer != "" {
				cols = append(cols, payerColumn{key: k, payer: payer, scope: model.SettingOutpatient})
			}
		}
	}
	// Map order is random; emitted payer order must not be.
	sort.Slice(cols, func(i, j int) bool { return cols[i].key < cols[j].key })
	return cols
}

// appliesTo reports whether this payer column covers a record in the
// given setting. A record without a setting takes every column.
func (c payerColumn) appliesTo(setting model.Setting) bool {
	return setting == model.SettingBoth || setting == c.scope
}

var (
	vendorCodeRe     = regexp.MustCompile(`(?i)^code\|\[?(\d+)\]?$`)
	vendorCodeTypeRe = regexp.MustCompile(`(?i)^code\|\[?(\d+)\]?\|type$`)
)

// Header-ish and charge keys, by their upper-cased spellings.
var (
	descriptionKeys = []string{"DESCRIPTION", "PROCEDURE DESCRIPTION", "CHARGE DESCRIPTION"}
	grossKeys       = []string{"GROSS CHARGE", "GROSS CHARGES"}
	cashKeys        = []string{"DISCOUNTED CASH PRICE", "DISCOUNTED CASH", "CASH PRICE"}
	minKeys         = []string{"DE-IDENTIFIED MIN CONTRACTED RATE", "DE-IDENTIFIED MINIMUM", "MINIMUM"}
	maxKeys         = []string{"DE-IDENTIFIED MAX CONTRACTED RATE", "DE-IDENTIFIED MAXIMUM", "MAXIMUM"}
)

// record wraps one flat object with case-insensitive key access.
type record struct {
	raw   map[string]any
	upper map[string]any
}

func newRecord(raw map[string]any) *record {
	r := &record{raw: raw, upper: make(map[string]any, len(raw))}
	for k, v := range raw {
		up := strings.ToUpper(strings.TrimSpace(k))
		if _, dup := r.upper[up]; !dup {
			r.upper[up] = v
		}
	}
	return r
}

func (r *record) get(key string) string {
	return cellString(r.upper[key])
}

func (r *record) first(keys []string) string {
	for _, k := range keys {
		if v := r.get(k); v != "" {
			return v
		}
	}
	return ""
}

func (r *record) setting() model.Setting {
	return model.ParseSetting(r.get("SETTING"))
}

// codes collects code|N / code|N|type pairs in index order, falling
// back to a bare CODE key.
func (r *record) codes() []model.CodeInformation {
	type pair struct {
		idx  int
		code string
		typ  string
	}
	byIdx := make(map[int]*pair)
	at := func(i int) *pair {
		p := byIdx[i]
		if p == nil {
			p = &pair{idx: i}
			byIdx[i] = p
		}
		return p
	}
	for k, v := range r.raw {
		k = strings.TrimSpace(k)
		if m := vendorCodeTypeRe.FindStringSubmatch(k); m != nil {
			if i, err := strconv.Atoi(m[1]); err == nil {
				at(i).typ = cellString(v)
			}
			continue
		}
		if m := vendorCodeRe.FindStringSubmatch(k); m != nil {
			if i, err := strconv.Atoi(m[1]); err == nil {
				at(i).code = cellString(v)
			}
		}
	}

	pairs := make([]*pair, 0, len(byIdx))
	for _, p := range byIdx {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })

	var out []model.CodeInformation
	for _, p := range pairs {
		if p.code == "" {
			continue
		}
		out = append(out, model.CodeInformation{Code: p.code, Type: model.ParseCodeType(p.typ)})
	}
	if len(out) == 0 {
		if code := r.get("CODE"); code != "" {
			out = append(out, model.CodeInformation{Code: code, Type: model.ParseCodeType(r.get("CODE TYPE"))})
		}
	}
	return out
}

// toItem converts one record using the payer columns discovered from
// the file's first record.
func (r *record) toItem(cols []payerColumn) *model.ChargeItem {
	setting := r.setting()
	sc := model.SettingCharge{
		Setting:        setting,
		GrossCharge:    parseFloat(r.first(grossKeys)),
		DiscountedCash: parseFloat(r.first(cashKeys)),
		MinNegotiated:  parseFloat(r.first(minKeys)),
		MaxNegotiated:  parseFloat(r.first(maxKeys)),
	}

	for _, col := range cols {
		if !col.appliesTo(setting) {
			continue
		}
		if pc := payerCharge(col, r.raw[col.key]); pc != nil {
			sc.PayerCharges = append(sc.PayerCharges, *pc)
		}
	}

	return &model.ChargeItem{
		Description:    r.first(descriptionKeys),
		Codes:          r.codes(),
		SettingCharges: []model.SettingCharge{sc},
	}
}

// payerCharge interprets one payer cell. The sentinel "VARIABLE" means
// the price is computed by an undisclosed algorithm; that is data, not
// absence.
func payerCharge(col payerColumn, v any) *model.PayerCharge {
	cell := cellString(v)
	if cell == "" {
		return nil
	}
	if strings.EqualFold(cell, model.AlgorithmicPricing) {
		alg := model.AlgorithmicPricing
		return &model.PayerCharge{PayerName: col.payer, Algorithm: &alg}
	}
	amount := parseFloat(cell)
	if amount == nil {
		return nil
	}
	return &model.PayerCharge{PayerName: col.payer, EstimatedAmount: amount}
}

// cellString renders a JSON scalar the way the export's CSV ancestor
// would have printed it.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// parseFloat parses a rate cell. Empty and non-numeric values are
// absent, never zero and never an error.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
