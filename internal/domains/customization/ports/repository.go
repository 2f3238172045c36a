package ports

import (
	"context"
	"errors"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

var (
	ErrSessionNotFound    = errors.New("wizard session not found")
	ErrGenerationNotFound = errors.New("generation not found")
)

// SessionStore holds open sessions in process. Sessions expire after an idle period
// and are never persisted.
type SessionStore interface {
	Save(ctx context.Context, session *custtypes.Session) error
	Get(ctx context.Context, id string) (*custtypes.Session, error)
	Delete(ctx context.Context, id string) error
}

// GenerationLog records completed generations.
type GenerationLog interface {
	Save(ctx context.Context, record *domain.GenerationRecord) (*custtypes.GenerationProjection, error)
	GetByID(ctx context.Context, id string) (*custtypes.GenerationProjection, error)
	ListByImage(ctx context.Context, imageID string) ([]*custtypes.GenerationProjection, error)
	SetDescription(ctx context.Context, id, description string) error
}
