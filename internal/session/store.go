package session

import (
	"context"
	"sync"

	"github.com/gotodo/gotodo/internal/storage"
	"github.com/gotodo/gotodo/pkg/logger"
)

// Store owns the current Session and writes every change through to a
// storage.Storage before committing it. Construct one per process and pass
// it to the consumers that need the token.
type Store struct {
	mu      sync.RWMutex
	current Session
	storage storage.Storage
	key     string
	log     *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for rehydration diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates a Store and rehydrates it from st. A missing, unreadable
// or unavailable entry leaves the store logged out; that is logged, never
// returned.
func NewStore(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     DefaultKey,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) Session {
	value, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.log.Warn("session rehydration failed, starting logged out", "key", s.key, "error", err.Error())
		return Session{}
	}
	if !ok {
		s.log.Debug("no persisted session", "key", s.key)
		return Session{}
	}
	sess, err := Decode(value)
	if err != nil {
		s.log.Warn("persisted session unreadable, starting logged out", "key", s.key, "error", err.Error())
		return Session{}
	}
	s.log.Debug("session rehydrated", "key", s.key, "logged_in", sess.IsLoggedIn())
	return sess
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	return s.Snapshot().Token()
}

// IsLoggedIn reports whether a token is held.
func (s *Store) IsLoggedIn() bool {
	return s.Snapshot().IsLoggedIn()
}

// SignIn stores token as the current session. The persisted entry is
// written first; if that fails the previous session stays current and the
// storage error is returned. An empty token returns ErrEmptyToken without
// touching storage.
func (s *Store) SignIn(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, effect, err := s.current.SignIn(token, s.key)
	if err != nil {
		return err
	}
	if err := effect.Apply(ctx, s.storage); err != nil {
		return err
	}
	s.current = next
	s.log.Debug("signed in", "token", token)
	return nil
}

// Logout clears the session and removes the persisted entry. Logging out
// while already logged out is not an error; the remove is still issued so a
// stale entry left by another process is cleared too.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, effect := s.current.Logout(s.key)
	if err := effect.Apply(ctx, s.storage); err != nil {
		return err
	}
	s.current = next
	s.log.Debug("logged out")
	return nil
}

// Reload re-reads the persisted entry, picking up changes written by other
// processes sharing the same storage. It reports ErrUnreadable for a
// corrupt entry, in which case the store is left logged out.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		return err
	}
	if !ok {
		s.current = Session{}
		return nil
	}
	sess, err := Decode(value)
	if err != nil {
		s.current = Session{}
		return err
	}
	s.current = sess
	return nil
}
