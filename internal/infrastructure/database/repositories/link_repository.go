package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
)

// LinkRepository implements hierarchy.LinkRepository using GORM
type LinkRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewLinkRepository creates a new repository instance
func NewLinkRepository(db *gorm.DB, logger *slog.Logger) *LinkRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkRepository{db: db, logger: logger}
}

// Upsert inserts the link or updates the consumption amount of the
// existing (product_id, process_id) row, then reloads it.
func (r *LinkRepository) Upsert(ctx context.Context, link *domain.ProductProcessLink) error {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "process_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"consumption_amount", "updated_at"}),
	}).Create(link).Error
	if err != nil {
		r.logger.Error("failed to upsert product-process link",
			slog.Uint64("product_id", uint64(link.ProductID)),
			slog.Uint64("process_id", uint64(link.ProcessID)),
			slog.Any("error", err))
		return fmt.Errorf("failed to upsert link: %w", err)
	}

	var stored domain.ProductProcessLink
	if err := db.Where("product_id = ? AND process_id = ?", link.ProductID, link.ProcessID).
		First(&stored).Error; err != nil {
		return lookupError(err, "product-process link")
	}
	*link = stored
	return nil
}

func (r *LinkRepository) List(ctx context.Context, filter hierarchy.LinkFilter) ([]domain.ProductProcessLink, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.ProcessID != 0 {
		q = q.Where("process_id = ?", filter.ProcessID)
	}

	var out []domain.ProductProcessLink
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

func (r *LinkRepository) Delete(ctx context.Context, productID, processID uint) error {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND process_id = ?", productID, processID).
		Delete(&domain.ProductProcessLink{})
	return affected(res, "product-process link", "delete")
}

var _ hierarchy.LinkRepository = (*LinkRepository)(nil)
