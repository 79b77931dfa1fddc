package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// lookupError maps a missing row to RECORD_NOT_FOUND and wraps anything else.
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.RecordNotFound(resource)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}

// affected returns RECORD_NOT_FOUND when a write touched no row.
func affected(res *gorm.DB, resource, op string) error {
	if res.Error != nil {
		return fmt.Errorf("failed to %s %s: %w", op, resource, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.RecordNotFound(resource)
	}
	return nil
}
