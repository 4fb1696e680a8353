package normalize

import "github.com/gyeh/mrfingest/internal/model"

// ResolvePrimaryCode picks the code that identifies an item carrying
// codes from several systems: the first system in
// model.PrimaryCodePriority present on the item wins; if none match,
// the item's first code stands. Document identity depends on this
// choice, so it must not vary with input order beyond the rule above.
func ResolvePrimaryCode(codes []model.CodeInformation) (string, model.CodeType) {
	if len(codes) == 0 {
		return "", ""
	}
	for _, want := range model.PrimaryCodePriority {
		for _, ci := range codes {
			if ci.Type == want {
				return ci.Code, ci.Type
			}
		}
	}
	return codes[0].Code, codes[0].Type
}
