package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawInputRecord is one harvested production row. Immutable once ingested.
type RawInputRecord struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	BatchID     uuid.UUID       `gorm:"type:uuid;index:idx_raw_inputs_batch" json:"batch_id"`
	RowIndex    int             `gorm:"not null" json:"row_index"`
	ProductName string          `gorm:"type:varchar(255);not null;index:idx_raw_inputs_scope" json:"product_name"`
	ProcessName string          `gorm:"type:varchar(255);not null;index:idx_raw_inputs_scope" json:"process_name"`
	InputName   string          `gorm:"type:varchar(255);not null" json:"input_name"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(32)" json:"unit"`
	BatchStart  time.Time       `gorm:"not null;index:idx_raw_inputs_window" json:"batch_start"`
	BatchEnd    time.Time       `gorm:"not null;index:idx_raw_inputs_window" json:"batch_end"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (RawInputRecord) TableName() string {
	return "raw_input_records"
}
