package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installation is a production facility, the root of the hierarchy.
type Installation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	ReportingYear int       `gorm:"not null" json:"reporting_year"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installation) TableName() string {
	return "installations"
}

// Product is a manufactured good reported for one window.
type Product struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	InstallationID     uint            `gorm:"not null;index:idx_products_installation" json:"installation_id"`
	Name               string          `gorm:"type:varchar(255);not null" json:"name"`
	WindowStart        time.Time       `gorm:"not null" json:"window_start"`
	WindowEnd          time.Time       `gorm:"not null" json:"window_end"`
	Category           string          `gorm:"type:varchar(100)" json:"category,omitempty"`
	ClassificationCode string          `gorm:"type:varchar(32)" json:"classification_code,omitempty"` // CN code
	ProducedQuantity   decimal.Decimal `gorm:"type:numeric" json:"produced_quantity"`
	SoldQuantity       decimal.Decimal `gorm:"type:numeric" json:"sold_quantity"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Window returns the product's reporting window.
func (p Product) Window() ReportingWindow {
	return ReportingWindow{Start: p.WindowStart, End: p.WindowEnd}
}

// Process is a named production step of an installation.
type Process struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	InstallationID uint       `gorm:"not null;index:idx_processes_installation" json:"installation_id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	PeriodStart    *time.Time `json:"period_start,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Process) TableName() string {
	return "processes"
}

// ProductProcessLink joins a product to a process. One row per pair.
type ProductProcessLink struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ProductID         uint            `gorm:"not null;uniqueIndex:idx_links_product_process" json:"product_id"`
	ProcessID         uint            `gorm:"not null;uniqueIndex:idx_links_product_process" json:"process_id"`
	ConsumptionAmount decimal.Decimal `gorm:"type:numeric" json:"consumption_amount"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProductProcessLink) TableName() string {
	return "product_process_links"
}
