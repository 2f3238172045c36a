package memory

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps open wizard sessions in process with a sliding idle expiry.
// Expired or deleted sessions are closed so their background work stops.
type SessionStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSessionStore constructs a store whose sessions expire after ttl without access.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	c := gocache.New(ttl, cleanup)
	c.OnEvicted(func(_ string, value interface{}) {
		if session, ok := value.(*custtypes.Session); ok {
			session.Close()
		}
	})
	return &SessionStore{cache: c, ttl: ttl}
}

// Save stores or refreshes a session.
func (s *SessionStore) Save(_ context.Context, session *custtypes.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("cannot store session without id")
	}
	s.cache.Set(session.ID, session, s.ttl)
	return nil
}

// Get returns the session and extends its lifetime.
func (s *SessionStore) Get(_ context.Context, id string) (*custtypes.Session, error) {
	value, ok := s.cache.Get(id)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session, ok := value.(*custtypes.Session)
	if !ok || session.Closed() {
		return nil, ports.ErrSessionNotFound
	}
	s.cache.Set(id, session, s.ttl)
	return session, nil
}

// Delete removes the session; the eviction hook closes it. Deleting an unknown id is a no-op.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Len reports the number of sessions held, including expired ones not yet swept.
func (s *SessionStore) Len() int {
	return s.cache.ItemCount()
}
