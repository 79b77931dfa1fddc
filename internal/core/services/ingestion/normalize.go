package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// CleanName composes the text to NFC and collapses runs of whitespace.
// Case is kept: scope filtering compares names exactly.
func CleanName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// ParseQuantity reads a decimal quantity with '.' as the decimal point.
// Commas are accepted only as thousands separators ("1,250.5"); a comma
// in any other position, such as the decimal comma of "1,5", is an error.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		whole, frac, hasFrac := strings.Cut(s, ".")
		if !thousandsGrouped(whole) || strings.Contains(frac, ",") {
			return decimal.Zero, fmt.Errorf("quantity %q: comma is not a thousands separator", s)
		}
		s = strings.ReplaceAll(whole, ",", "")
		if hasFrac {
			s += "." + frac
		}
	}
	return decimal.NewFromString(s)
}

// thousandsGrouped reports whether s is 1-3 leading digits followed by
// comma-separated groups of exactly three.
func thousandsGrouped(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	groups := strings.Split(s, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"20060102",
}

// ParseDate accepts the date layouts seen in production exports and bare
// spreadsheet serial numbers. The result is truncated to a UTC date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
