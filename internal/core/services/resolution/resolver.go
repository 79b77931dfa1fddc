// Package resolution matches free-text input names against master lists.
//
// Matching is a bidirectional, case-insensitive substring test and the
// first qualifying entry in list order wins. When several entries share a
// substring ("Coke" and "Coke Oven Gas") the list order decides; that tie
// rule is kept as-is until product confirms a different one.
package resolution

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// Fold canonicalizes a name for comparison: NFC composition followed by
// Unicode case folding. Surrounding whitespace is ignored.
func Fold(s string) string {
	// cases.Caser is stateful, one per call.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Matches reports whether candidate and name contain one another after folding.
func Matches(candidate, name string) bool {
	c, n := Fold(candidate), Fold(name)
	if c == "" || n == "" {
		return false
	}
	return strings.Contains(n, c) || strings.Contains(c, n)
}

// Resolve returns the first entry whose name contains candidate or is
// contained in it. ok is false when candidate is blank or nothing qualifies.
func Resolve(candidate string, entries []domain.ReferenceEntry) (domain.ReferenceEntry, bool) {
	c := Fold(candidate)
	if c == "" {
		return domain.ReferenceEntry{}, false
	}
	for _, e := range entries {
		n := Fold(e.Name)
		if n == "" {
			continue
		}
		if strings.Contains(n, c) || strings.Contains(c, n) {
			return e, true
		}
	}
	return domain.ReferenceEntry{}, false
}

// Candidates returns every qualifying entry in list order. Resolve always
// picks the first of these.
func Candidates(candidate string, entries []domain.ReferenceEntry) []domain.ReferenceEntry {
	var out []domain.ReferenceEntry
	for _, e := range entries {
		if Matches(candidate, e.Name) {
			out = append(out, e)
		}
	}
	return out
}
