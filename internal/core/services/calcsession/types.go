package calcsession

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ledger"
)

// Session is an open input dialog for one process. Entries mirror what is
// persisted for the process; Masters are the lists fetched when the dialog
// opened or was last refreshed.
type Session struct {
	ID          uuid.UUID                 `json:"id"`
	ProcessID   uint                      `json:"process_id"`
	Masters     domain.MasterLists        `json:"masters"`
	Entries     []domain.CalculationEntry `json:"entries"`
	OpenedAt    time.Time                 `json:"opened_at"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
}

// Ledger builds the aggregation ledger over the session's entries.
func (s *Session) Ledger() *ledger.Ledger {
	return ledger.New(s.ProcessID, s.Entries)
}

// clone returns a copy whose entry slice can be changed independently.
func (s *Session) clone() *Session {
	c := *s
	c.Entries = append([]domain.CalculationEntry(nil), s.Entries...)
	return &c
}

// View is a session together with its recomputed totals
type View struct {
	Session *Session        `json:"session"`
	Totals  ledger.Totals   `json:"totals"`
	Total   decimal.Decimal `json:"total"`
}

// Preview is an unsaved calculation. Candidates lists every master entry
// the name matches in list order; Entry always uses the first.
type Preview struct {
	Entry      domain.CalculationEntry `json:"entry"`
	Candidates []domain.ReferenceEntry `json:"candidates"`
	Ambiguous  bool                    `json:"ambiguous"`
}

// Summary is the per-kind emission of a process, read from persistence.
type Summary struct {
	ProcessID  uint            `json:"process_id"`
	EntryCount int             `json:"entry_count"`
	Totals     ledger.Totals   `json:"totals"`
	Total      decimal.Decimal `json:"total"`
}

// Store keeps open sessions between user actions
type Store interface {
	Put(ctx context.Context, s *Session) error
	// Get returns apperrors NOT_FOUND when the session is unknown or expired.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EntryRepository is the durable store of calculation entries
type EntryRepository interface {
	ListByProcess(ctx context.Context, processID uint) ([]domain.CalculationEntry, error)
	Create(ctx context.Context, e *domain.CalculationEntry) error
	// Replace deletes oldID and creates e atomically.
	Replace(ctx context.Context, oldID uint, e *domain.CalculationEntry) error
	Delete(ctx context.Context, id uint) error
}

// MasterSource serves the reference master lists
type MasterSource interface {
	ListMaterials(ctx context.Context) ([]domain.MaterialMaster, error)
	ListFuels(ctx context.Context) ([]domain.FuelMaster, error)
}

// ProcessReader looks up the process a dialog is opened for
type ProcessReader interface {
	GetByID(ctx context.Context, id uint) (*domain.Process, error)
}
