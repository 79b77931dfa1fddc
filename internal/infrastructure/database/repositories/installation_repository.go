package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
)

// InstallationRepository implements hierarchy.InstallationRepository using GORM
type InstallationRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewInstallationRepository creates a new repository instance
func NewInstallationRepository(db *gorm.DB, logger *slog.Logger) *InstallationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &InstallationRepository{db: db, logger: logger}
}

func (r *InstallationRepository) Create(ctx context.Context, inst *domain.Installation) error {
	if err := r.db.WithContext(ctx).Create(inst).Error; err != nil {
		r.logger.Error("failed to create installation",
			slog.String("name", inst.Name),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert installation: %w", err)
	}
	return nil
}

func (r *InstallationRepository) GetByID(ctx context.Context, id uint) (*domain.Installation, error) {
	var inst domain.Installation
	if err := r.db.WithContext(ctx).First(&inst, id).Error; err != nil {
		return nil, lookupError(err, "installation")
	}
	return &inst, nil
}

func (r *InstallationRepository) List(ctx context.Context) ([]domain.Installation, error) {
	var out []domain.Installation
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

func (r *InstallationRepository) Update(ctx context.Context, inst *domain.Installation) error {
	if err := r.db.WithContext(ctx).Save(inst).Error; err != nil {
		return fmt.Errorf("failed to update installation: %w", err)
	}
	return nil
}

func (r *InstallationRepository) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Installation{}, id), "installation", "delete")
}

var _ hierarchy.InstallationRepository = (*InstallationRepository)(nil)
