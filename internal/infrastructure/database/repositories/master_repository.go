package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
)

// MasterRepository serves the material and fuel reference tables. Lists are
// returned in id order, which is the order name resolution scans them in.
type MasterRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewMasterRepository creates a new repository instance
func NewMasterRepository(db *gorm.DB, logger *slog.Logger) *MasterRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MasterRepository{db: db, logger: logger}
}

func (r *MasterRepository) ListMaterials(ctx context.Context) ([]domain.MaterialMaster, error) {
	var out []domain.MaterialMaster
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list material masters: %w", err)
	}
	return out, nil
}

func (r *MasterRepository) ListFuels(ctx context.Context) ([]domain.FuelMaster, error) {
	var out []domain.FuelMaster
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list fuel masters: %w", err)
	}
	return out, nil
}

func (r *MasterRepository) CreateMaterial(ctx context.Context, m *domain.MaterialMaster) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to insert material master: %w", err)
	}
	r.logger.Info("material master created",
		slog.Uint64("id", uint64(m.ID)),
		slog.String("name", m.Name))
	return nil
}

func (r *MasterRepository) CreateFuel(ctx context.Context, f *domain.FuelMaster) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("failed to insert fuel master: %w", err)
	}
	r.logger.Info("fuel master created",
		slog.Uint64("id", uint64(f.ID)),
		slog.String("name", f.Name))
	return nil
}

var _ calcsession.MasterSource = (*MasterRepository)(nil)
