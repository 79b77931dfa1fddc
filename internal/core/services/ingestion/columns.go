package ingestion

import (
	"strings"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/resolution"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// Field is a RawInputRecord column
type Field string

const (
	FieldProduct    Field = "product_name"
	FieldProcess    Field = "process_name"
	FieldInput      Field = "input_name"
	FieldQuantity   Field = "quantity"
	FieldUnit       Field = "unit"
	FieldBatchStart Field = "batch_start"
	FieldBatchEnd   Field = "batch_end"
)

// RequiredFields must each map to a column of the sheet.
var RequiredFields = []Field{
	FieldProduct, FieldProcess, FieldInput, FieldQuantity, FieldBatchStart, FieldBatchEnd,
}

// headerAliases lists accepted header spellings per field, already folded
// and stripped of spaces, underscores and hyphens.
var headerAliases = map[Field][]string{
	FieldProduct:    {"productname", "product", "제품명", "제품", "품목"},
	FieldProcess:    {"processname", "process", "공정명", "공정"},
	FieldInput:      {"inputname", "input", "material", "materialname", "fuel", "투입물명", "투입물", "원료명"},
	FieldQuantity:   {"quantity", "qty", "amount", "수량", "투입량"},
	FieldUnit:       {"unit", "units", "단위"},
	FieldBatchStart: {"batchstart", "startdate", "start", "from", "시작일"},
	FieldBatchEnd:   {"batchend", "enddate", "end", "to", "종료일"},
}

var headerStripper = strings.NewReplacer(" ", "", "_", "", "-", "", ".", "")

func headerKey(s string) string {
	return headerStripper.Replace(resolution.Fold(s))
}

// HeaderMap maps each known field to the sheet column that carries it. The
// first column matching a field wins. Missing required columns reject the
// whole file.
func HeaderMap(columns []string) (map[Field]string, error) {
	lookup := make(map[string]Field)
	for field, aliases := range headerAliases {
		for _, a := range aliases {
			lookup[a] = field
		}
	}

	out := make(map[Field]string, len(headerAliases))
	for _, col := range columns {
		field, ok := lookup[headerKey(col)]
		if !ok {
			continue
		}
		if _, taken := out[field]; !taken {
			out[field] = col
		}
	}

	var missing []string
	for _, f := range RequiredFields {
		if _, ok := out[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.InvalidFile("missing required columns: "+strings.Join(missing, ", ")).
			WithDetails("missing_columns", missing)
	}
	return out, nil
}
