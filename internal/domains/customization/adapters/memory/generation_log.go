package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
	"github.com/Apurer/portrait-customizer/internal/shared/projection"
)

var _ ports.GenerationLog = (*GenerationLog)(nil)

// GenerationLog is an in-memory generation history for development and tests.
type GenerationLog struct {
	mu      sync.RWMutex
	records map[string]*custtypes.GenerationProjection
	now     func() time.Time
}

// NewGenerationLog constructs an empty log.
func NewGenerationLog() *GenerationLog {
	return &GenerationLog{
		records: map[string]*custtypes.GenerationProjection{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (l *GenerationLog) WithClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

// Save inserts or replaces a record.
func (l *GenerationLog) Save(_ context.Context, record *domain.GenerationRecord) (*custtypes.GenerationProjection, error) {
	if record == nil {
		return nil, errors.New("cannot save nil generation")
	}
	if record.ID == "" {
		return nil, domain.ErrEmptyGenerationID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var previous *projection.Metadata
	if existing, ok := l.records[record.ID]; ok {
		previous = &existing.Metadata
	}
	stored := projection.Of(cloneRecord(record), projection.Stamp(previous, l.now()))
	l.records[record.ID] = stored
	return cloneProjection(stored), nil
}

// GetByID loads a record.
func (l *GenerationLog) GetByID(_ context.Context, id string) (*custtypes.GenerationProjection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored, ok := l.records[id]
	if !ok {
		return nil, ports.ErrGenerationNotFound
	}
	return cloneProjection(stored), nil
}

// ListByImage returns every record for the image, newest first.
func (l *GenerationLog) ListByImage(_ context.Context, imageID string) ([]*custtypes.GenerationProjection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var result []*custtypes.GenerationProjection
	for _, stored := range l.records {
		if stored.Entity.OriginalImageID == imageID {
			result = append(result, cloneProjection(stored))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Metadata.CreatedAt.After(result[j].Metadata.CreatedAt)
	})
	return result, nil
}

// SetDescription stores the enrichment description.
func (l *GenerationLog) SetDescription(_ context.Context, id, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored, ok := l.records[id]
	if !ok {
		return ports.ErrGenerationNotFound
	}
	stored.Entity.Describe(description)
	stored.Metadata.UpdatedAt = l.now()
	return nil
}

func cloneRecord(record *domain.GenerationRecord) *domain.GenerationRecord {
	copy := *record
	copy.VariationIDs = append([]string(nil), record.VariationIDs...)
	return &copy
}

func cloneProjection(p *custtypes.GenerationProjection) *custtypes.GenerationProjection {
	return projection.Of(cloneRecord(p.Entity), p.Metadata)
}
