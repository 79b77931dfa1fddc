package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch statuses
const (
	BatchStatusUploaded  = "uploaded"
	BatchStatusParsing   = "parsing"
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
)

// IngestionBatch represents one uploaded production spreadsheet
type IngestionBatch struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalFilename string     `gorm:"type:varchar(500);not null" json:"original_filename"`
	FilePath         string     `gorm:"type:text" json:"file_path"`
	FileHash         string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"file_hash"` // For idempotency
	Status           string     `gorm:"type:varchar(50);not null;default:'uploaded'" json:"status"`
	TotalRows        int        `gorm:"default:0" json:"total_rows"`
	AcceptedRows     int        `gorm:"default:0" json:"accepted_rows"`
	RejectedRows     int        `gorm:"default:0" json:"rejected_rows"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for GORM
func (IngestionBatch) TableName() string {
	return "ingestion_batches"
}

// BeforeCreate GORM hook - called before creating a record
func (b *IngestionBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ValidStatuses returns list of valid batch statuses
func ValidStatuses() []string {
	return []string{
		BatchStatusUploaded,
		BatchStatusParsing,
		BatchStatusCompleted,
		BatchStatusFailed,
	}
}

// IsValidStatus checks if a status is valid
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
