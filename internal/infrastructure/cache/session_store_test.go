package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

func setupSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(NewRedisCacheFromClient(client, nil), ttl, nil), mr
}

func sampleSession() *calcsession.Session {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &calcsession.Session{
		ID:        uuid.New(),
		ProcessID: 7,
		Masters: domain.MasterLists{
			Materials: []domain.ReferenceEntry{
				{ID: 1, Kind: domain.KindMaterial, Name: "Scrap", EmissionFactor: decimal.RequireFromString("0.44")},
			},
			Fuels: []domain.ReferenceEntry{
				{ID: 1, Kind: domain.KindFuel, Name: "LNG", EmissionFactor: decimal.RequireFromString("56.1")},
			},
		},
		Entries: []domain.CalculationEntry{{
			ID:              3,
			ProcessID:       7,
			Kind:            domain.KindFuel,
			ResolvedName:    "LNG",
			Factor:          decimal.RequireFromString("56.1"),
			Amount:          decimal.NewFromInt(2),
			OxidationFactor: decimal.NewFromInt(1),
			Emission:        decimal.RequireFromString("112.2"),
			FormulaText:     "2 × 56.1 × 1 = 112.2",
		}},
		OpenedAt:    now,
		RefreshedAt: now,
	}
}

func TestSessionStore_PutGet(t *testing.T) {
	store, _ := setupSessionStore(t, time.Hour)
	ctx := context.Background()
	sess := sampleSession()

	require.NoError(t, store.Put(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ProcessID, got.ProcessID)
	assert.Equal(t, "Scrap", got.Masters.Materials[0].Name)
	require.Len(t, got.Entries, 1)
	assert.True(t, got.Entries[0].Emission.Equal(decimal.RequireFromString("112.2")))
	assert.True(t, got.OpenedAt.Equal(sess.OpenedAt))
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := setupSessionStore(t, 30*time.Minute)
	ctx := context.Background()
	sess := sampleSession()

	require.NoError(t, store.Put(ctx, sess))
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey(sess.ID)))

	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, sess.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := setupSessionStore(t, time.Hour)
	ctx := context.Background()
	sess := sampleSession()

	require.NoError(t, store.Put(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.Get(ctx, sess.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	assert.NoError(t, store.Delete(ctx, uuid.New()), "deleting an unknown session is a no-op")
}

func TestSessionStore_Unreachable(t *testing.T) {
	store, mr := setupSessionStore(t, time.Hour)
	mr.Close()

	_, err := store.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err), "transport errors are left for the caller to classify")

	health := store.cache.Health(context.Background())
	assert.Equal(t, "down", health["status"])
}
