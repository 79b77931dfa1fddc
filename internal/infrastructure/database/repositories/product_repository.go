package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
)

// ProductRepository implements hierarchy.ProductRepository using GORM
type ProductRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewProductRepository creates a new repository instance
func NewProductRepository(db *gorm.DB, logger *slog.Logger) *ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductRepository{db: db, logger: logger}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.logger.Error("failed to create product",
			slog.Uint64("installation_id", uint64(p.InstallationID)),
			slog.String("name", p.Name),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, lookupError(err, "product")
	}
	return &p, nil
}

// ListByInstallation lists products of one installation; 0 lists all.
func (r *ProductRepository) ListByInstallation(ctx context.Context, installationID uint) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if installationID != 0 {
		q = q.Where("installation_id = ?", installationID)
	}

	var out []domain.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Product{}, id), "product", "delete")
}

var _ hierarchy.ProductRepository = (*ProductRepository)(nil)
