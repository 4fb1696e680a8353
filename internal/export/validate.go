package export

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// requiredColumns are the fields downstream consumers key on; an export
// file without them is unusable regardless of what else it carries.
var requiredColumns = []string{
	"hospital_name",
	"description",
	"setting",
	"primary_code",
	"primary_code_type",
}

// ValidateSchema checks that a Parquet schema carries every required
// column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	for _, col := range requiredColumns {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}
	return nil
}
