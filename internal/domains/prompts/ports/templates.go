package ports

import (
	"context"
	"errors"

	"github.com/Apurer/portrait-customizer/internal/domains/prompts/domain"
)

// ErrTemplateNotFound is returned when a named template does not exist.
var ErrTemplateNotFound = errors.New("prompt template not found")

// TemplateSource provides prompt templates by name.
type TemplateSource interface {
	Get(ctx context.Context, name string) (domain.Template, error)
	Names(ctx context.Context) []string
}
