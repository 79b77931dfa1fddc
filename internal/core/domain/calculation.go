package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationEntry is one persisted direct-emission line of a process.
// Entries are created and deleted whole; they are never patched.
type CalculationEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ProcessID       uint            `gorm:"not null;index:idx_calc_entries_process" json:"process_id"`
	Kind            Kind            `gorm:"type:varchar(16);not null" json:"kind"`
	ResolvedName    string          `gorm:"type:varchar(255);not null" json:"resolved_name"`
	Factor          decimal.Decimal `gorm:"type:numeric;not null" json:"factor"`
	Amount          decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	OxidationFactor decimal.Decimal `gorm:"type:numeric;not null" json:"oxidation_factor"`
	Emission        decimal.Decimal `gorm:"type:numeric;not null" json:"emission"`
	FormulaText     string          `gorm:"type:text;not null" json:"formula_text"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (CalculationEntry) TableName() string {
	return "calculation_entries"
}
