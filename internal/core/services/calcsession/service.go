// Package calcsession runs the input dialog of a process: it loads the
// master lists and the process's entries when the dialog opens, validates
// and writes through every save or delete, and keeps the per-kind totals
// recomputed.
//
// Every operation either completes or leaves the stored session exactly as
// it was. Master lists are fetched on open and on explicit refresh only.
package calcsession

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calculator"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/ledger"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/resolution"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/metrics"
)

const (
	masterService = "master reference service"
	entryStore    = "calculation entry store"
	sessionStore  = "session store"
	processStore  = "hierarchy store"
)

// Service implements the input dialog lifecycle
type Service struct {
	sessions  Store
	entries   EntryRepository
	masters   MasterSource
	processes ProcessReader
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new session service
func NewService(sessions Store, entries EntryRepository, masters MasterSource, processes ProcessReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:  sessions,
		entries:   entries,
		masters:   masters,
		processes: processes,
		logger:    logger,
		now:       time.Now,
	}
}

func unavailable(err error, collaborator string) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return apperrors.CollaboratorUnavailable(err, collaborator)
}

// Open starts a dialog for processID.
func (s *Service) Open(ctx context.Context, processID uint) (*View, error) {
	if _, err := s.processes.GetByID(ctx, processID); err != nil {
		return nil, unavailable(err, processStore)
	}

	masters, err := s.fetchMasters(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListByProcess(ctx, processID)
	if err != nil {
		return nil, unavailable(err, entryStore)
	}

	now := s.now()
	sess := &Session{
		ID:          uuid.New(),
		ProcessID:   processID,
		Masters:     masters,
		Entries:     entries,
		OpenedAt:    now,
		RefreshedAt: now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, unavailable(err, sessionStore)
	}

	metrics.IncSessionOpened()
	s.logger.Info("input dialog opened",
		slog.String("session_id", sess.ID.String()),
		slog.Uint64("process_id", uint64(processID)),
		slog.Int("entry_count", len(entries)),
		slog.Int("material_count", len(masters.Materials)),
		slog.Int("fuel_count", len(masters.Fuels)))

	return view(sess), nil
}

// Get returns the current state of an open dialog.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}
	return view(sess), nil
}

// RefreshMasters re-fetches both master lists. On failure the session
// keeps its last-known lists.
func (s *Service) RefreshMasters(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}

	masters, err := s.fetchMasters(ctx)
	if err != nil {
		s.logger.Warn("master refresh failed, keeping last-known lists",
			slog.String("session_id", id.String()),
			slog.Any("error", err))
		return nil, err
	}

	next := sess.clone()
	next.Masters = masters
	next.RefreshedAt = s.now()
	if err := s.sessions.Put(ctx, next); err != nil {
		return nil, unavailable(err, sessionStore)
	}
	return view(next), nil
}

// Preview computes the entry a save would create without persisting it,
// together with every master entry the name matches.
func (s *Service) Preview(ctx context.Context, id uuid.UUID, d calculator.Draft) (*Preview, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}
	entry, err := calculator.Build(sess.ProcessID, d, sess.Masters)
	if err != nil {
		return nil, err
	}
	candidates := resolution.Candidates(d.Name, sess.Masters.For(d.Kind))
	return &Preview{
		Entry:      entry,
		Candidates: candidates,
		Ambiguous:  len(candidates) > 1,
	}, nil
}

// Save validates d, persists the resulting entry and adds it to the dialog.
func (s *Service) Save(ctx context.Context, id uuid.UUID, d calculator.Draft) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}

	entry, err := s.build(sess, d)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, &entry); err != nil {
		metrics.IncCalculationSave(string(d.Kind), metrics.ResultError)
		return nil, unavailable(err, entryStore)
	}

	l := sess.Ledger()
	l.Add(entry)
	next := sess.clone()
	next.Entries = l.Entries()

	if err := s.sessions.Put(ctx, next); err != nil {
		s.compensate(ctx, entry.ID)
		metrics.IncCalculationSave(string(d.Kind), metrics.ResultError)
		return nil, unavailable(err, sessionStore)
	}

	metrics.IncCalculationSave(string(d.Kind), metrics.ResultSuccess)
	s.logger.Info("calculation entry saved",
		slog.String("session_id", id.String()),
		slog.Uint64("entry_id", uint64(entry.ID)),
		slog.String("kind", string(entry.Kind)),
		slog.String("resolved_name", entry.ResolvedName),
		slog.String("formula", entry.FormulaText))

	return view(next), nil
}

// Replace swaps entry entryID for one built from d. The old entry is
// deleted and the new one created in one step; nothing is patched in place.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, entryID uint, d calculator.Draft) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}

	l := sess.Ledger()
	previous, ok := l.Get(entryID)
	if !ok {
		return nil, apperrors.NotFound("calculation entry not found in this dialog")
	}

	entry, err := s.build(sess, d)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Replace(ctx, entryID, &entry); err != nil {
		metrics.IncCalculationSave(string(d.Kind), metrics.ResultError)
		return nil, unavailable(err, entryStore)
	}

	l.Replace(entryID, entry)
	next := sess.clone()
	next.Entries = l.Entries()
	if err := s.sessions.Put(ctx, next); err != nil {
		s.revertReplace(ctx, entry.ID, previous)
		metrics.IncCalculationSave(string(d.Kind), metrics.ResultError)
		return nil, unavailable(err, sessionStore)
	}

	metrics.IncCalculationSave(string(d.Kind), metrics.ResultSuccess)
	s.logger.Info("calculation entry replaced",
		slog.String("session_id", id.String()),
		slog.Uint64("old_entry_id", uint64(entryID)),
		slog.Uint64("entry_id", uint64(entry.ID)))

	return view(next), nil
}

// Delete removes exactly one entry from the process.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, entryID uint) (*View, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, unavailable(err, sessionStore)
	}

	l := sess.Ledger()
	removed, ok := l.Get(entryID)
	if !ok {
		return nil, apperrors.NotFound("calculation entry not found in this dialog")
	}

	if err := s.entries.Delete(ctx, entryID); err != nil {
		return nil, unavailable(err, entryStore)
	}

	l.Remove(entryID)
	next := sess.clone()
	next.Entries = l.Entries()
	if err := s.sessions.Put(ctx, next); err != nil {
		s.revertDelete(ctx, removed)
		return nil, unavailable(err, sessionStore)
	}

	s.logger.Info("calculation entry deleted",
		slog.String("session_id", id.String()),
		slog.Uint64("entry_id", uint64(entryID)))

	return view(next), nil
}

// Close discards the dialog. Anything not saved is gone.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return unavailable(err, sessionStore)
	}
	s.logger.Debug("input dialog closed", slog.String("session_id", id.String()))
	return nil
}

// Summary totals a process's persisted entries without opening a dialog.
func (s *Service) Summary(ctx context.Context, processID uint) (*Summary, error) {
	entries, err := s.entries.ListByProcess(ctx, processID)
	if err != nil {
		return nil, unavailable(err, entryStore)
	}

	l := ledger.New(processID, entries)
	return &Summary{
		ProcessID:  l.ProcessID(),
		EntryCount: l.Len(),
		Totals:     l.Totals(),
		Total:      l.GrandTotal(),
	}, nil
}

func (s *Service) build(sess *Session, d calculator.Draft) (domain.CalculationEntry, error) {
	entry, err := calculator.Build(sess.ProcessID, d, sess.Masters)
	if err == nil {
		metrics.IncResolution(string(d.Kind), true)
		return entry, nil
	}

	result := metrics.ResultRejected
	if apperrors.HasCode(err, apperrors.ErrCodeUnmatchedReference) {
		result = metrics.ResultUnmatched
		metrics.IncResolution(string(d.Kind), false)
	}
	metrics.IncCalculationSave(string(d.Kind), result)

	s.logger.Info("calculation entry rejected",
		slog.String("session_id", sess.ID.String()),
		slog.String("kind", string(d.Kind)),
		slog.String("name", d.Name),
		slog.String("reason", err.Error()))
	return domain.CalculationEntry{}, err
}

// compensate removes an entry that was persisted but never made it into
// the session.
func (s *Service) compensate(ctx context.Context, entryID uint) {
	if err := s.entries.Delete(ctx, entryID); err != nil {
		s.logger.Error("failed to roll back calculation entry",
			slog.Uint64("entry_id", uint64(entryID)),
			slog.Any("error", err))
	}
}

// revertDelete re-inserts an entry, under its old id, whose deletion never
// made it into the session.
func (s *Service) revertDelete(ctx context.Context, removed domain.CalculationEntry) {
	if err := s.entries.Create(ctx, &removed); err != nil {
		s.logger.Error("failed to restore deleted calculation entry",
			slog.Uint64("entry_id", uint64(removed.ID)),
			slog.Any("error", err))
	}
}

// revertReplace puts previous back in place of the entry that replaced it.
func (s *Service) revertReplace(ctx context.Context, replacementID uint, previous domain.CalculationEntry) {
	if err := s.entries.Replace(ctx, replacementID, &previous); err != nil {
		s.logger.Error("failed to restore replaced calculation entry",
			slog.Uint64("entry_id", uint64(previous.ID)),
			slog.Uint64("replacement_id", uint64(replacementID)),
			slog.Any("error", err))
	}
}

func (s *Service) fetchMasters(ctx context.Context) (domain.MasterLists, error) {
	materials, err := s.masters.ListMaterials(ctx)
	if err != nil {
		return domain.MasterLists{}, apperrors.CollaboratorUnavailable(err, masterService)
	}
	fuels, err := s.masters.ListFuels(ctx)
	if err != nil {
		return domain.MasterLists{}, apperrors.CollaboratorUnavailable(err, masterService)
	}

	lists := domain.MasterLists{
		Materials: make([]domain.ReferenceEntry, 0, len(materials)),
		Fuels:     make([]domain.ReferenceEntry, 0, len(fuels)),
	}
	for _, m := range materials {
		lists.Materials = append(lists.Materials, m.Reference())
	}
	for _, f := range fuels {
		lists.Fuels = append(lists.Fuels, f.Reference())
	}
	return lists, nil
}

func view(sess *Session) *View {
	l := sess.Ledger()
	return &View{
		Session: sess,
		Totals:  l.Totals(),
		Total:   l.GrandTotal(),
	}
}
