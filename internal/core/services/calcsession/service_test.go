package calcsession

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calculator"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

var errDown = errors.New("connection reset by peer")

// mockSessionStore keeps sessions in a map
type mockSessionStore struct {
	sessions map[uuid.UUID]*Session
	putErr   error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[uuid.UUID]*Session)}
}

func (m *mockSessionStore) Put(ctx context.Context, s *Session) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.sessions[s.ID] = s.clone()
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("input session not found or expired")
	}
	return s.clone(), nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

// mockEntryRepository keeps entries in insertion order
type mockEntryRepository struct {
	nextID  uint
	entries []domain.CalculationEntry
	err     error
}

func (m *mockEntryRepository) ListByProcess(ctx context.Context, processID uint) ([]domain.CalculationEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.CalculationEntry
	for _, e := range m.entries {
		if e.ProcessID == processID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntryRepository) Create(ctx context.Context, e *domain.CalculationEntry) error {
	if m.err != nil {
		return m.err
	}
	if e.ID == 0 {
		m.nextID++
		e.ID = m.nextID
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockEntryRepository) Replace(ctx context.Context, oldID uint, e *domain.CalculationEntry) error {
	if m.err != nil {
		return m.err
	}
	if err := m.Delete(ctx, oldID); err != nil {
		return err
	}
	return m.Create(ctx, e)
}

func (m *mockEntryRepository) Delete(ctx context.Context, id uint) error {
	if m.err != nil {
		return m.err
	}
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return apperrors.RecordNotFound("calculation entry")
}

// mockMasterSource serves fixed master lists
type mockMasterSource struct {
	materials []domain.MaterialMaster
	fuels     []domain.FuelMaster
	err       error
	calls     int
}

func (m *mockMasterSource) ListMaterials(ctx context.Context) ([]domain.MaterialMaster, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.materials, nil
}

func (m *mockMasterSource) ListFuels(ctx context.Context) ([]domain.FuelMaster, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.fuels, nil
}

type mockProcesses map[uint]domain.Process

func (m mockProcesses) GetByID(ctx context.Context, id uint) (*domain.Process, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperrors.RecordNotFound("process")
	}
	return &p, nil
}

type fixture struct {
	svc      *Service
	sessions *mockSessionStore
	entries  *mockEntryRepository
	masters  *mockMasterSource
}

func newFixture() *fixture {
	f := &fixture{
		sessions: newMockSessionStore(),
		entries:  &mockEntryRepository{},
		masters: &mockMasterSource{
			materials: []domain.MaterialMaster{
				{ID: 1, Name: "Iron Ore", EmissionFactor: decimal.RequireFromString("1.8")},
				{ID: 2, Name: "Limestone", EmissionFactor: decimal.RequireFromString("0.44")},
			},
			fuels: []domain.FuelMaster{
				{ID: 1, Name: "Natural Gas", EmissionFactor: decimal.RequireFromString("56.1")},
			},
		},
	}
	procs := mockProcesses{7: {ID: 7, InstallationID: 1, Name: "EAF smelting"}}
	f.svc = NewService(f.sessions, f.entries, f.masters, procs, nil)
	return f
}

func draft(kind domain.Kind, name, amount string) calculator.Draft {
	return calculator.Draft{Kind: kind, Name: name, Amount: decimal.RequireFromString(amount)}
}

func TestOpen(t *testing.T) {
	f := newFixture()
	f.entries.entries = []domain.CalculationEntry{
		{ID: 90, ProcessID: 7, Kind: domain.KindFuel, Emission: decimal.NewFromInt(5)},
		{ID: 91, ProcessID: 8, Kind: domain.KindFuel, Emission: decimal.NewFromInt(100)},
	}
	f.entries.nextID = 91

	v, err := f.svc.Open(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint(7), v.Session.ProcessID)
	assert.Len(t, v.Session.Entries, 1)
	assert.Len(t, v.Session.Masters.Materials, 2)
	assert.Equal(t, domain.KindFuel, v.Session.Masters.Fuels[0].Kind)
	assert.True(t, decimal.NewFromInt(5).Equal(v.Totals[domain.KindFuel]))
	assert.Contains(t, f.sessions.sessions, v.Session.ID)
}

func TestOpen_Failures(t *testing.T) {
	t.Run("unknown process", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Open(context.Background(), 99)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRecordNotFound))
	})

	t.Run("master service down", func(t *testing.T) {
		f := newFixture()
		f.masters.err = errDown
		_, err := f.svc.Open(context.Background(), 7)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))
		assert.Empty(t, f.sessions.sessions)
	})

	t.Run("entry store down", func(t *testing.T) {
		f := newFixture()
		f.entries.err = errDown
		_, err := f.svc.Open(context.Background(), 7)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))
		assert.Empty(t, f.sessions.sessions)
	})
}

func TestSave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	v, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "iron ore", "100"))
	require.NoError(t, err)

	require.Len(t, v.Session.Entries, 1)
	saved := v.Session.Entries[0]
	assert.Equal(t, "Iron Ore", saved.ResolvedName)
	assert.Equal(t, "100 × 1.8 × 1 = 180", saved.FormulaText)
	assert.True(t, decimal.NewFromInt(180).Equal(v.Totals[domain.KindMaterial]))
	assert.True(t, decimal.NewFromInt(180).Equal(v.Total))
	assert.Len(t, f.entries.entries, 1, "saves write through")

	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Entries, 1)
}

func TestSave_UnmatchedLeavesCollectionUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Dolomite", "3"))
	require.Error(t, err)

	appErr, ok := apperrors.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnmatchedReference, appErr.Code)

	assert.Empty(t, f.entries.entries)
	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Session.Entries)
	for _, e := range f.entries.entries {
		assert.False(t, e.Factor.IsZero())
	}
}

func TestSave_ValidationError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "0"))
	require.Error(t, err)
	appErr, _ := apperrors.GetAppError(err)
	assert.Equal(t, "amount", appErr.Field())
	assert.Empty(t, f.entries.entries)
}

func TestSave_PersistenceFailureLeavesSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindFuel, "Natural Gas", "2"))
	require.NoError(t, err)

	f.entries.err = errDown
	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "1"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))

	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Entries, 1)
	assert.True(t, stored.Totals[domain.KindMaterial].IsZero())
}

func TestSave_SessionStoreFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	f.sessions.putErr = errDown
	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "1"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))
	assert.Empty(t, f.entries.entries, "persisted entry is rolled back")
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	id := v.Session.ID

	for _, amount := range []string{"10", "20", "30"} {
		v, err = f.svc.Save(ctx, id, draft(domain.KindMaterial, "Iron Ore", amount))
		require.NoError(t, err)
	}
	target := v.Session.Entries[1].ID

	v, err = f.svc.Delete(ctx, id, target)
	require.NoError(t, err)

	require.Len(t, v.Session.Entries, 2)
	sum := decimal.Zero
	for _, e := range v.Session.Entries {
		assert.NotEqual(t, target, e.ID)
		sum = sum.Add(e.Emission)
	}
	assert.True(t, sum.Equal(v.Totals[domain.KindMaterial]))
	assert.True(t, decimal.NewFromInt(72).Equal(sum))
	assert.Len(t, f.entries.entries, 2)

	_, err = f.svc.Delete(ctx, id, target)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestDelete_PersistenceFailureLeavesSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	v, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "10"))
	require.NoError(t, err)

	f.entries.err = errDown
	_, err = f.svc.Delete(ctx, v.Session.ID, v.Session.Entries[0].ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))

	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Entries, 1)
}

func TestDelete_SessionStoreFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	v, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "100"))
	require.NoError(t, err)
	target := v.Session.Entries[0]

	f.sessions.putErr = errDown
	_, err = f.svc.Delete(ctx, v.Session.ID, target.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))

	require.Len(t, f.entries.entries, 1, "deleted entry is restored")
	assert.Equal(t, target.ID, f.entries.entries[0].ID)

	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Session.Entries, 1)
	assert.True(t, decimal.NewFromInt(180).Equal(stored.Totals[domain.KindMaterial]))

	// Once the store is back the same delete goes through
	f.sessions.putErr = nil
	v, err = f.svc.Delete(ctx, v.Session.ID, target.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Session.Entries)
	assert.Empty(t, f.entries.entries)
	assert.True(t, v.Total.IsZero())
}

func TestReplace_SessionStoreFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	v, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "100"))
	require.NoError(t, err)
	old := v.Session.Entries[0]

	f.sessions.putErr = errDown
	_, err = f.svc.Replace(ctx, v.Session.ID, old.ID, draft(domain.KindMaterial, "Limestone", "100"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))

	require.Len(t, f.entries.entries, 1)
	assert.Equal(t, old.ID, f.entries.entries[0].ID, "previous entry is back under its id")
	assert.Equal(t, "100 × 1.8 × 1 = 180", f.entries.entries[0].FormulaText)

	f.sessions.putErr = nil
	v, err = f.svc.Replace(ctx, v.Session.ID, old.ID, draft(domain.KindMaterial, "Limestone", "100"))
	require.NoError(t, err)
	require.Len(t, v.Session.Entries, 1)
	assert.Equal(t, "Limestone", v.Session.Entries[0].ResolvedName)
	assert.Len(t, f.entries.entries, 1)
}

func TestReplace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)
	v, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "10"))
	require.NoError(t, err)
	old := v.Session.Entries[0]

	v, err = f.svc.Replace(ctx, v.Session.ID, old.ID, draft(domain.KindMaterial, "Limestone", "100"))
	require.NoError(t, err)

	require.Len(t, v.Session.Entries, 1)
	assert.NotEqual(t, old.ID, v.Session.Entries[0].ID)
	assert.Equal(t, "100 × 0.44 × 1 = 44", v.Session.Entries[0].FormulaText)
	assert.True(t, decimal.NewFromInt(44).Equal(v.Total))

	_, err = f.svc.Replace(ctx, v.Session.ID, v.Session.Entries[0].ID, draft(domain.KindMaterial, "Dolomite", "1"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnmatchedReference))
	assert.Len(t, f.entries.entries, 1)
}

func TestRefreshMasters_FailureKeepsLastKnown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	f.masters.err = errDown
	_, err = f.svc.RefreshMasters(ctx, v.Session.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCollaboratorUnavailable))

	stored, err := f.svc.Get(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Session.Masters.Materials, 2)

	// The dialog stays usable with the cached lists.
	_, err = f.svc.Save(ctx, v.Session.ID, draft(domain.KindMaterial, "Iron Ore", "1"))
	require.NoError(t, err)
}

func TestRefreshMasters_PicksUpNewEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	f.masters.materials = append(f.masters.materials, domain.MaterialMaster{ID: 3, Name: "Dolomite", EmissionFactor: decimal.RequireFromString("0.47")})
	v, err = f.svc.RefreshMasters(ctx, v.Session.ID)
	require.NoError(t, err)
	assert.Len(t, v.Session.Masters.Materials, 3)
	assert.Equal(t, 2, f.masters.calls)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	p, err := f.svc.Preview(ctx, v.Session.ID, draft(domain.KindFuel, "gas", "2"))
	require.NoError(t, err)
	assert.Equal(t, "Natural Gas", p.Entry.ResolvedName)
	assert.False(t, p.Ambiguous)
	assert.Len(t, p.Candidates, 1)
	assert.Empty(t, f.entries.entries)
}

func TestPreview_ListsAmbiguousCandidates(t *testing.T) {
	f := newFixture()
	f.masters.materials = []domain.MaterialMaster{
		{ID: 1, Name: "Coke", EmissionFactor: decimal.RequireFromString("3.1")},
		{ID: 2, Name: "Coke Oven Gas", EmissionFactor: decimal.RequireFromString("0.8")},
		{ID: 3, Name: "Limestone", EmissionFactor: decimal.RequireFromString("0.44")},
	}
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	p, err := f.svc.Preview(ctx, v.Session.ID, draft(domain.KindMaterial, "coke", "10"))
	require.NoError(t, err)

	assert.True(t, p.Ambiguous)
	require.Len(t, p.Candidates, 2)
	assert.Equal(t, "Coke", p.Candidates[0].Name)
	assert.Equal(t, "Coke Oven Gas", p.Candidates[1].Name)
	assert.Equal(t, "Coke", p.Entry.ResolvedName, "list order decides")
	assert.Equal(t, "10 × 3.1 × 1 = 31", p.Entry.FormulaText)
}

func TestClose(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.svc.Open(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, f.svc.Close(ctx, v.Session.ID))

	_, err = f.svc.Get(ctx, v.Session.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestSummary(t *testing.T) {
	f := newFixture()
	f.entries.entries = []domain.CalculationEntry{
		{ID: 1, ProcessID: 7, Kind: domain.KindMaterial, Emission: decimal.RequireFromString("180")},
		{ID: 2, ProcessID: 7, Kind: domain.KindFuel, Emission: decimal.RequireFromString("112.2")},
		{ID: 3, ProcessID: 8, Kind: domain.KindFuel, Emission: decimal.RequireFromString("1")},
	}

	s, err := f.svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), s.ProcessID)
	assert.Equal(t, 2, s.EntryCount)
	assert.True(t, decimal.RequireFromString("292.2").Equal(s.Total))
	assert.True(t, decimal.RequireFromString("112.2").Equal(s.Totals[domain.KindFuel]))
}
