package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ingestion"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// BatchRepository implements ingestion.BatchRepository using GORM
type BatchRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewBatchRepository creates a new repository instance
func NewBatchRepository(db *gorm.DB, logger *slog.Logger) *BatchRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchRepository{db: db, logger: logger}
}

func (r *BatchRepository) Create(ctx context.Context, batch *domain.IngestionBatch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		r.logger.Error("failed to create ingestion batch",
			slog.String("filename", batch.OriginalFilename),
			slog.String("hash", batch.FileHash),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngestionBatch, error) {
	var batch domain.IngestionBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "ingestion batch")
	}
	return &batch, nil
}

// GetByHash returns (nil, nil) when no batch carries the hash.
func (r *BatchRepository) GetByHash(ctx context.Context, hash string) (*domain.IngestionBatch, error) {
	var batch domain.IngestionBatch
	err := r.db.WithContext(ctx).Where("file_hash = ?", hash).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &batch, nil
}

// UpdateStatus moves a batch to status; unknown statuses are rejected.
func (r *BatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, message string) error {
	if !domain.IsValidStatus(status) {
		return apperrors.Validation("status", fmt.Sprintf("unknown batch status %q", status))
	}
	res := r.db.WithContext(ctx).
		Model(&domain.IngestionBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": message,
		})
	return affected(res, "ingestion batch", "update")
}

// Complete stores the final counts and status of a batch
func (r *BatchRepository) Complete(ctx context.Context, batch *domain.IngestionBatch) error {
	if !domain.IsValidStatus(batch.Status) {
		return apperrors.Validation("status", fmt.Sprintf("unknown batch status %q", batch.Status))
	}
	res := r.db.WithContext(ctx).
		Model(&domain.IngestionBatch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"status":        batch.Status,
			"total_rows":    batch.TotalRows,
			"accepted_rows": batch.AcceptedRows,
			"rejected_rows": batch.RejectedRows,
			"error_message": batch.ErrorMessage,
			"completed_at":  batch.CompletedAt,
		})
	if err := affected(res, "ingestion batch", "update"); err != nil {
		return err
	}

	r.logger.Info("ingestion batch completed",
		slog.String("batch_id", batch.ID.String()),
		slog.String("status", batch.Status),
		slog.Int("accepted_rows", batch.AcceptedRows),
		slog.Int("rejected_rows", batch.RejectedRows))
	return nil
}

var _ ingestion.BatchRepository = (*BatchRepository)(nil)
