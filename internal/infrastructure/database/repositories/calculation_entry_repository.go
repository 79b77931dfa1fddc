package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
)

// CalculationEntryRepository is the durable store of calculation entries.
// Entries are only ever inserted or deleted whole.
type CalculationEntryRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewCalculationEntryRepository creates a new repository instance
func NewCalculationEntryRepository(db *gorm.DB, logger *slog.Logger) *CalculationEntryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalculationEntryRepository{db: db, logger: logger}
}

func (r *CalculationEntryRepository) ListByProcess(ctx context.Context, processID uint) ([]domain.CalculationEntry, error) {
	var out []domain.CalculationEntry
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("id ASC").
		Find(&out).
		Error
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

func (r *CalculationEntryRepository) Create(ctx context.Context, e *domain.CalculationEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		r.logger.Error("failed to save calculation entry",
			slog.Uint64("process_id", uint64(e.ProcessID)),
			slog.String("kind", string(e.Kind)),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert calculation entry: %w", err)
	}
	return nil
}

// Replace deletes oldID and inserts e in one transaction.
func (r *CalculationEntryRepository) Replace(ctx context.Context, oldID uint, e *domain.CalculationEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := affected(tx.Delete(&domain.CalculationEntry{}, oldID), "calculation entry", "delete"); err != nil {
			return err
		}
		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("failed to insert calculation entry: %w", err)
		}
		return nil
	})
}

func (r *CalculationEntryRepository) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.CalculationEntry{}, id), "calculation entry", "delete")
}

var _ calcsession.EntryRepository = (*CalculationEntryRepository)(nil)
