package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
)

// ProcessRepository implements hierarchy.ProcessRepository using GORM
type ProcessRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewProcessRepository creates a new repository instance
func NewProcessRepository(db *gorm.DB, logger *slog.Logger) *ProcessRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessRepository{db: db, logger: logger}
}

func (r *ProcessRepository) Create(ctx context.Context, p *domain.Process) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.logger.Error("failed to create process",
			slog.Uint64("installation_id", uint64(p.InstallationID)),
			slog.String("name", p.Name),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert process: %w", err)
	}
	return nil
}

func (r *ProcessRepository) GetByID(ctx context.Context, id uint) (*domain.Process, error) {
	var p domain.Process
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, lookupError(err, "process")
	}
	return &p, nil
}

// ListByInstallation lists processes of one installation; 0 lists all.
func (r *ProcessRepository) ListByInstallation(ctx context.Context, installationID uint) ([]domain.Process, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if installationID != 0 {
		q = q.Where("installation_id = ?", installationID)
	}

	var out []domain.Process
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return out, nil
}

func (r *ProcessRepository) Update(ctx context.Context, p *domain.Process) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update process: %w", err)
	}
	return nil
}

func (r *ProcessRepository) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Process{}, id), "process", "delete")
}

var (
	_ hierarchy.ProcessRepository = (*ProcessRepository)(nil)
	_ calcsession.ProcessReader   = (*ProcessRepository)(nil)
)
