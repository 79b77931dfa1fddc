package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
)

// DefaultInsertBatchLen is used when no insert batch size is configured
const DefaultInsertBatchLen = 500

// RawInputRepository stores harvested production rows
type RawInputRepository struct {
	db        *gorm.DB
	batchSize int
	logger    *slog.Logger
}

// NewRawInputRepository creates a new repository instance
func NewRawInputRepository(db *gorm.DB, batchSize int, logger *slog.Logger) *RawInputRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchLen
	}
	return &RawInputRepository{db: db, batchSize: batchSize, logger: logger}
}

// ListAll returns every row in ingestion order.
func (r *RawInputRepository) ListAll(ctx context.Context) ([]domain.RawInputRecord, error) {
	var out []domain.RawInputRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

// ReplaceBatch swaps the rows of one batch inside a transaction.
func (r *RawInputRepository) ReplaceBatch(ctx context.Context, batchID uuid.UUID, records []domain.RawInputRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batchID).Delete(&domain.RawInputRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear batch rows: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, r.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert batch rows: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to store raw inputs",
			slog.String("batch_id", batchID.String()),
			slog.Int("row_count", len(records)),
			slog.Any("error", err))
		return err
	}

	r.logger.Info("stored raw inputs",
		slog.String("batch_id", batchID.String()),
		slog.Int("row_count", len(records)))
	return nil
}

var (
	_ hierarchy.RawInputReader = (*RawInputRepository)(nil)
	_ ingestion.RawInputWriter = (*RawInputRepository)(nil)
)
