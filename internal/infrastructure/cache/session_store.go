package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandroruanova/cbam-emissions/internal/core/services/calcsession"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

const sessionKeyPrefix = "cbam:session:"

// SessionStore keeps open input dialogs in Redis as JSON. Every Put
// restarts the idle timeout.
type SessionStore struct {
	cache  *RedisCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionStore creates a session store on top of cache
func NewSessionStore(cache *RedisCache, ttl time.Duration, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{cache: cache, ttl: ttl, logger: logger}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (s *SessionStore) Put(ctx context.Context, sess *calcsession.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKey(sess.ID), payload, s.ttl); err != nil {
		s.logger.Error("failed to store session",
			slog.String("session_id", sess.ID.String()),
			slog.Any("error", err))
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*calcsession.Session, error) {
	payload, err := s.cache.GetBytes(ctx, sessionKey(id))
	if errors.Is(err, ErrCacheMiss) {
		return nil, apperrors.NotFound("input dialog session not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess calcsession.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cache.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ calcsession.Store = (*SessionStore)(nil)
