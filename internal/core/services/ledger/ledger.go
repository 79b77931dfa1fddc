// Package ledger keeps the per-kind emission totals of the active process.
//
// Totals are recomputed by scanning every held entry after each mutation.
// Entry counts per process are in the tens, so there is no running
// accumulator that could drift from the collection.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// Totals maps each kind to the sum of its entries' emission.
type Totals map[domain.Kind]decimal.Decimal

// Ledger holds one process's calculation entries in save order.
type Ledger struct {
	processID uint
	entries   []domain.CalculationEntry
	totals    Totals
}

// New builds a ledger over a copy of entries.
func New(processID uint, entries []domain.CalculationEntry) *Ledger {
	l := &Ledger{processID: processID}
	l.Reset(entries)
	return l
}

// ProcessID is the process the ledger totals.
func (l *Ledger) ProcessID() uint {
	return l.processID
}

// Reset replaces the held entries wholesale.
func (l *Ledger) Reset(entries []domain.CalculationEntry) {
	l.entries = append(make([]domain.CalculationEntry, 0, len(entries)), entries...)
	l.recompute()
}

// Add appends a saved entry.
func (l *Ledger) Add(e domain.CalculationEntry) {
	l.entries = append(l.entries, e)
	l.recompute()
}

// Remove drops the entry with the given id. It reports whether one was held.
func (l *Ledger) Remove(id uint) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
	l.recompute()
	return true
}

// Replace swaps the entry with the given id for e, keeping its position.
func (l *Ledger) Replace(id uint, e domain.CalculationEntry) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.entries[i] = e
	l.recompute()
	return true
}

// Get returns the held entry with the given id.
func (l *Ledger) Get(id uint) (domain.CalculationEntry, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.CalculationEntry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of the held entries.
func (l *Ledger) Entries() []domain.CalculationEntry {
	return append([]domain.CalculationEntry(nil), l.entries...)
}

// Len is the number of held entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Total returns the summed emission of kind.
func (l *Ledger) Total(kind domain.Kind) decimal.Decimal {
	if t, ok := l.totals[kind]; ok {
		return t
	}
	return decimal.Zero
}

// Totals returns a copy of the per-kind totals. Every kind is present.
func (l *Ledger) Totals() Totals {
	out := make(Totals, len(l.totals))
	for k, v := range l.totals {
		out[k] = v
	}
	return out
}

// GrandTotal sums every kind.
func (l *Ledger) GrandTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, k := range domain.Kinds() {
		sum = sum.Add(l.Total(k))
	}
	return sum
}

func (l *Ledger) index(id uint) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) recompute() {
	l.totals = Sum(l.entries)
}

// Sum totals entries per kind from scratch.
func Sum(entries []domain.CalculationEntry) Totals {
	totals := make(Totals, 2)
	for _, k := range domain.Kinds() {
		totals[k] = decimal.Zero
	}
	for _, e := range entries {
		totals[e.Kind] = totals[e.Kind].Add(e.Emission)
	}
	return totals
}
