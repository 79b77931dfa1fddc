package filter

import (
	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// Key selects the raw row field rows are collapsed by
type Key string

const (
	KeyInputName   Key = "input_name"   // material/fuel picker
	KeyProductName Key = "product_name" // product-name picker
)

// Value extracts the key field from a row.
func (k Key) Value(r domain.RawInputRecord) string {
	if k == KeyProductName {
		return r.ProductName
	}
	return r.InputName
}

// Scope narrows rows to one product and process, by exact name.
type Scope struct {
	ProductName string `json:"product_name"`
	ProcessName string `json:"process_name"`
}

// Option is one deduplicated picker entry: the first row seen for its key.
type Option struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Unit   string          `json:"unit"`
}

// Result contains a filter run's picker options
type Result struct {
	Options []Option `json:"options"`
	Stats   Stats    `json:"stats"`
}

// Stats describes how rows were narrowed
type Stats struct {
	InputCount        int  `json:"input_count"`
	MatchedCount      int  `json:"matched_count"`
	OutputCount       int  `json:"output_count"`
	DuplicatesRemoved int  `json:"duplicates_removed"`
	FallbackUsed      bool `json:"fallback_used"`
}

// Names returns the option names in order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Options))
	for _, o := range r.Options {
		names = append(names, o.Name)
	}
	return names
}

// Contains reports whether name is one of the options (exact match).
func (r *Result) Contains(name string) bool {
	for _, o := range r.Options {
		if o.Name == name {
			return true
		}
	}
	return false
}
