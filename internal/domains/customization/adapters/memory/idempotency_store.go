package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore remembers generation keys in process. Keys are lost on restart,
// so a retry after a restart is treated as a new submission.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]ports.IdempotencyRecord
	now  func() time.Time
}

// NewIdempotencyStore returns an empty store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: make(map[string]ports.IdempotencyRecord), now: time.Now}
}

// WithClock swaps the time source used to stamp records.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.keys[key]; ok {
		return &record, nil
	}
	return nil, nil
}

// Save claims the key for the record. A second claim with the same fingerprint and generation
// is a no-op; anything else reports the first claim alongside ErrIdempotencyConflict.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claimed, ok := s.keys[record.Key]; ok {
		if claimed.RequestHash == record.RequestHash && claimed.GenerationID == record.GenerationID {
			return &claimed, nil
		}
		return &claimed, ports.ErrIdempotencyConflict
	}
	record.CreatedAt = s.now()
	record.UpdatedAt = record.CreatedAt
	s.keys[record.Key] = record
	return &record, nil
}

func (s *IdempotencyStore) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.keys)
	maps.DeleteFunc(s.keys, func(_ string, record ports.IdempotencyRecord) bool {
		return record.CreatedAt.Before(cutoff)
	})
	return int64(before - len(s.keys)), nil
}
