package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	"SalesCast/internal/service/cache"
	applogger "SalesCast/pkg/logger"
)

const sessionKeyPrefix = "salescast:session:"

// CacheSessionStore keeps sessions as JSON in a BytesCache (in-process or
// Redis). Every Get decodes a private copy, so sessions never share tables.
type CacheSessionStore struct {
	c   cache.BytesCache
	ttl time.Duration
	l   *applogger.Logger
}

func NewCacheSessionStore(c cache.BytesCache, ttl time.Duration) *CacheSessionStore {
	return &CacheSessionStore{c: c, ttl: ttl, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CacheSessionStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CacheSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	b, ok, err := s.c.GetBytes(ctx, sessionKeyPrefix+id)
	if err != nil {
		s.l.Error("session get failed", applogger.String("session_id", id), applogger.Error(err))
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *CacheSessionStore) Save(ctx context.Context, sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := s.c.SetBytes(ctx, sessionKeyPrefix+sess.ID, b, s.ttl); err != nil {
		s.l.Error("session save failed", applogger.String("session_id", sess.ID), applogger.Error(err))
		return fmt.Errorf("save session: %w", err)
	}
	s.l.Debug("session saved",
		applogger.String("session_id", sess.ID),
		applogger.Int("bytes", len(b)),
	)
	return nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.c.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ domrepo.SessionStore = (*CacheSessionStore)(nil)
