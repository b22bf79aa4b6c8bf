package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"counter_pos/internal/metrics"
	"counter_pos/internal/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession is returned for unknown, expired or revoked sessions.
var ErrNoSession = errors.New("session expired or not found")

// SessionStore caches session state between requests.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type SessionManager interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

type sessionManager struct {
	mu        sync.Mutex
	directory UserDirectory
	store     SessionStore
	ttl       time.Duration
	logger    *zap.Logger
}

func NewSessionManager(directory UserDirectory, store SessionStore, ttl time.Duration, logger *zap.Logger) SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionManager{directory: directory, store: store, ttl: ttl, logger: logger}
}

func (m *sessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *sessionManager) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := m.directory.Authenticate(username, password)
	if err != nil {
		metrics.LoginFailures.Inc()
		return nil, err
	}

	s := NewSession(uuid.NewString(), user)
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Info("session started", zap.String("session_id", s.ID), zap.String("username", user.Username))
	return s, nil
}

func (m *sessionManager) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx, sessionID)
}

// Update loads a session, applies fn and stores the result. Nothing is
// stored when fn fails.
func (m *sessionManager) Update(ctx context.Context, sessionID string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return s, err
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *sessionManager) Logout(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Info("session ended", zap.String("session_id", sessionID))
	return nil
}

// load rebuilds a session from the cache. The user record is re-read from
// the directory so deleted accounts lose their sessions.
func (m *sessionManager) load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.store.GetSession(ctx, sessionID)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	user, err := m.directory.GetUser(data.Username)
	if errors.Is(err, ErrNotFound) {
		_ = m.store.DeleteSession(ctx, sessionID)
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	cart, err := RestoreCart(data.Cart)
	if err != nil {
		m.logger.Warn("discarding unreadable cached cart", zap.String("session_id", sessionID), zap.Error(err))
		cart = NewCart()
	}

	return &Session{ID: data.ID, User: user, Cart: cart, CreatedAt: data.CreatedAt}, nil
}

func (m *sessionManager) save(ctx context.Context, s *Session) error {
	data := &redis.SessionData{
		ID:         s.ID,
		Username:   s.User.Username,
		Permission: s.User.Permission,
		Cart:       s.Cart.Snapshot(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  time.Now(),
	}
	if err := m.store.SetSession(ctx, s.ID, data, m.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
