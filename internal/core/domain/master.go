package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// Kind selects which master list an input is resolved against.
type Kind string

const (
	KindMaterial Kind = "material"
	KindFuel     Kind = "fuel"
)

// Kinds lists every kind in reporting order.
func Kinds() []Kind {
	return []Kind{KindMaterial, KindFuel}
}

// ParseKind accepts "material" or "fuel" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMaterial:
		return KindMaterial, nil
	case KindFuel:
		return KindFuel, nil
	}
	return "", apperrors.Validation("kind", "kind must be material or fuel")
}

// MaterialMaster is a curated material with its emission factor.
type MaterialMaster struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	EnglishName    string          `gorm:"type:varchar(255)" json:"english_name,omitempty"`
	EmissionFactor decimal.Decimal `gorm:"type:numeric;not null" json:"emission_factor"`
	CarbonContent  decimal.Decimal `gorm:"type:numeric" json:"carbon_content"`
}

func (MaterialMaster) TableName() string {
	return "material_masters"
}

// Reference projects the row onto the shape name resolution works with.
func (m MaterialMaster) Reference() ReferenceEntry {
	return ReferenceEntry{
		ID:             m.ID,
		Kind:           KindMaterial,
		Name:           m.Name,
		EnglishName:    m.EnglishName,
		EmissionFactor: m.EmissionFactor,
	}
}

// FuelMaster is a curated fuel with its emission factor.
type FuelMaster struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	EnglishName       string          `gorm:"type:varchar(255)" json:"english_name,omitempty"`
	EmissionFactor    decimal.Decimal `gorm:"type:numeric;not null" json:"emission_factor"`
	NetCalorificValue decimal.Decimal `gorm:"type:numeric" json:"net_calorific_value"`
}

func (FuelMaster) TableName() string {
	return "fuel_masters"
}

func (f FuelMaster) Reference() ReferenceEntry {
	return ReferenceEntry{
		ID:             f.ID,
		Kind:           KindFuel,
		Name:           f.Name,
		EnglishName:    f.EnglishName,
		EmissionFactor: f.EmissionFactor,
	}
}

// ReferenceEntry is a master row of either kind, in master list order.
type ReferenceEntry struct {
	ID             uint            `json:"id"`
	Kind           Kind            `json:"kind"`
	Name           string          `json:"name"`
	EnglishName    string          `json:"english_name,omitempty"`
	EmissionFactor decimal.Decimal `json:"emission_factor"`
}

// MasterLists holds both reference lists fetched for one dialog session.
type MasterLists struct {
	Materials []ReferenceEntry `json:"materials"`
	Fuels     []ReferenceEntry `json:"fuels"`
}

// For returns the list matching kind.
func (m MasterLists) For(kind Kind) []ReferenceEntry {
	if kind == KindFuel {
		return m.Fuels
	}
	return m.Materials
}
