package types

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

// Credentials carries the customer token forwarded to customer-scoped platform endpoints.
type Credentials struct {
	Bearer string
}

// Session is the in-process state of one open customization modal. Callers must hold
// the session lock while reading or mutating any field.
type Session struct {
	ID               string
	Wizard           *domain.Wizard
	Credentials      Credentials
	Balance          int
	BalanceKnown     bool
	Generating       bool
	ProgressMessages []string
	Variations       []domain.GeneratedVariation
	LastGenerationID string
	Description      string
	OpenedAt         time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession binds a wizard to a fresh lifetime context.
func NewSession(id string, wizard *domain.Wizard, creds Credentials, openedAt time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:          id,
		Wizard:      wizard,
		Credentials: creds,
		OpenedAt:    openedAt,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Lock acquires the session lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Context is cancelled when the session is closed or expires.
func (s *Session) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Close abandons background work bound to the session.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Closed reports whether the session lifetime has ended.
func (s *Session) Closed() bool {
	return s.ctx != nil && s.ctx.Err() != nil
}
