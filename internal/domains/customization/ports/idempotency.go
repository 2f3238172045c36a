package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different payload.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord associates a client-supplied key with the generation it produced.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	GenerationID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdempotencyStore persists idempotency keys so retried submissions can be replayed.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. An existing key with the same hash and generation is returned
	// as is; otherwise ErrIdempotencyConflict is returned with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// PurgeBefore removes records created before cutoff and reports how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
