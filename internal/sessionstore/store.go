// Package sessionstore stores in-flight WebAuthn ceremony sessions.
//
// Sessions are single use and short lived. Expiry is enforced lazily
// when a session is taken and by a periodic sweep owned by the
// process lifecycle. The store is safe for concurrent use; sweeping
// a session that is concurrently being consumed resolves to a
// not-found outcome for one of the two callers.
package sessionstore

import (
	"context"
	"sync"
	"time"

	wallet "github.com/idaralabs/Idara-Wallet"
)

const defaultTTL = time.Minute * 10

// store is an in-memory implementation of wallet.SessionRepository.
type store struct {
	mu       sync.Mutex
	sessions map[string]*wallet.CeremonySession
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns a new in-memory session store.
func NewStore(options ...ConfigOption) wallet.SessionRepository {
	s := store{
		sessions: make(map[string]*wallet.CeremonySession),
		ttl:      defaultTTL,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(&s)
	}

	return &s
}

// ConfigOption configures the store.
type ConfigOption func(*store)

// WithTTL configures the store with a session lifetime.
func WithTTL(ttl time.Duration) ConfigOption {
	return func(s *store) {
		s.ttl = ttl
	}
}

// WithClock configures the store with a clock function for tests.
func WithClock(now func() time.Time) ConfigOption {
	return func(s *store) {
		s.now = now
	}
}

// Create stores a ceremony session. A zero ExpiresAt is stamped with
// the store's TTL.
func (s *store) Create(ctx context.Context, session *wallet.CeremonySession) error {
	if session.ID == "" {
		return wallet.ErrInvalidField("session ID cannot be empty")
	}

	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = s.now().Add(s.ttl)
	}

	copied := *session

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = &copied
	return nil
}

// Take retrieves and removes a session. Sessions past expiry are
// removed and reported as not found.
func (s *store) Take(ctx context.Context, sessionID string) (*wallet.CeremonySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, wallet.ErrNotFound("ceremony session does not exist")
	}

	delete(s.sessions, sessionID)

	if s.now().After(session.ExpiresAt) {
		return nil, wallet.ErrNotFound("ceremony session is expired")
	}

	return session, nil
}

// PurgeExpired removes all sessions past expiry and returns the
// total removed.
func (s *store) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}

	return removed, nil
}
