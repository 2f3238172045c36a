// Package projection pairs entities read back from a store with the timestamps the store assigned.
package projection

import "time"

// Metadata holds store-assigned timestamps.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stamp returns the metadata of a write at now. An earlier creation time survives overwrites.
func Stamp(previous *Metadata, now time.Time) Metadata {
	if previous == nil || previous.CreatedAt.IsZero() {
		return Metadata{CreatedAt: now, UpdatedAt: now}
	}
	return Metadata{CreatedAt: previous.CreatedAt, UpdatedAt: now}
}

// Projection is an entity as a store returned it.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Of pairs an entity with its metadata.
func Of[T any](entity T, meta Metadata) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: meta}
}
