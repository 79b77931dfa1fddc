// Package calculator turns a user's draft line into a persistable
// direct-emission entry.
package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/resolution"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// DefaultOxidationFactor applies when a draft leaves the factor empty.
var DefaultOxidationFactor = decimal.RequireFromString("1.0000")

// Draft is what the input dialog collects before save.
type Draft struct {
	Kind            domain.Kind      `json:"kind"`
	Name            string           `json:"name"`
	Amount          decimal.Decimal  `json:"amount"`
	OxidationFactor *decimal.Decimal `json:"oxidation_factor,omitempty"`
}

// Oxidation returns the draft's oxidation factor or the default.
func (d Draft) Oxidation() decimal.Decimal {
	if d.OxidationFactor == nil {
		return DefaultOxidationFactor
	}
	return *d.OxidationFactor
}

// Emission is amount × factor × oxidation.
func Emission(amount, factor, oxidation decimal.Decimal) decimal.Decimal {
	return amount.Mul(factor).Mul(oxidation)
}

// Formula renders the calculation with the operands as given, e.g.
// "100 × 1.8 × 1 = 180".
func Formula(amount, factor, oxidation, emission decimal.Decimal) string {
	return fmt.Sprintf("%s × %s × %s = %s",
		amount.String(), factor.String(), oxidation.String(), emission.String())
}

// Validate checks the draft's own fields. It does not look at master lists.
func Validate(d Draft) error {
	if d.Kind != domain.KindMaterial && d.Kind != domain.KindFuel {
		return apperrors.Validation("kind", "kind must be material or fuel")
	}
	if strings.TrimSpace(d.Name) == "" {
		return apperrors.Validation("resolved_name", "input name is required")
	}
	if !d.Amount.IsPositive() {
		return apperrors.Validation("amount", "amount must be greater than zero")
	}
	if !d.Oxidation().IsPositive() {
		return apperrors.Validation("oxidation_factor", "oxidation factor must be greater than zero")
	}
	return nil
}

// Build validates the draft, resolves its name against the kind's master
// list and returns the entry to persist for processID. The factor and
// resolved name come from the matched master entry, never from the draft.
func Build(processID uint, d Draft, masters domain.MasterLists) (domain.CalculationEntry, error) {
	if err := Validate(d); err != nil {
		return domain.CalculationEntry{}, err
	}

	ref, ok := resolution.Resolve(d.Name, masters.For(d.Kind))
	if !ok {
		return domain.CalculationEntry{}, apperrors.UnmatchedReference(string(d.Kind), d.Name)
	}

	ox := d.Oxidation()
	emission := Emission(d.Amount, ref.EmissionFactor, ox)

	return domain.CalculationEntry{
		ProcessID:       processID,
		Kind:            d.Kind,
		ResolvedName:    ref.Name,
		Factor:          ref.EmissionFactor,
		Amount:          d.Amount,
		OxidationFactor: ox,
		Emission:        emission,
		FormulaText:     Formula(d.Amount, ref.EmissionFactor, ox, emission),
	}, nil
}
