package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Apurer/portrait-customizer/internal/domains/prompts/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/prompts/ports"
)

// ErrInvalidInput signals a render request that names no template and carries no text.
var ErrInvalidInput = errors.New("invalid prompt render input")

// RenderInput selects a stored template by name or supplies inline text.
// Inline text wins when both are set.
type RenderInput struct {
	TemplateName string
	Text         string
	Values       map[string]string
}

// Service renders prompt templates.
type Service struct {
	templates   ports.TemplateSource
	defaultName string
	logger      *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultTemplate overrides the template used for previews.
func WithDefaultTemplate(name string) Option {
	return func(s *Service) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultName = name
		}
	}
}

// NewService wires a template source.
func NewService(templates ports.TemplateSource, opts ...Option) *Service {
	s := &Service{
		templates:   templates,
		defaultName: domain.DefaultTemplateName,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Render substitutes values into the selected template.
func (s *Service) Render(ctx context.Context, input RenderInput) (*domain.Rendering, error) {
	var tpl domain.Template
	switch {
	case strings.TrimSpace(input.Text) != "":
		tpl = domain.Template{Name: "inline", Text: input.Text}
	case strings.TrimSpace(input.TemplateName) != "":
		if s.templates == nil {
			return nil, ports.ErrTemplateNotFound
		}
		found, err := s.templates.Get(ctx, strings.TrimSpace(input.TemplateName))
		if err != nil {
			return nil, err
		}
		tpl = found
	default:
		return nil, ErrInvalidInput
	}
	rendering := tpl.Render(input.Values)
	if len(rendering.Unresolved) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "prompt template has unknown placeholders",
			slog.String("template", tpl.Name),
			slog.Any("placeholders", rendering.Unresolved),
		)
	}
	return &rendering, nil
}

// Templates lists the stored template names.
func (s *Service) Templates(ctx context.Context) []string {
	if s.templates == nil {
		return nil
	}
	return s.templates.Names(ctx)
}

// Preview renders the default template. A missing template yields "".
func (s *Service) Preview(values map[string]string) string {
	rendering, err := s.Render(context.Background(), RenderInput{TemplateName: s.defaultName, Values: values})
	if err != nil {
		return ""
	}
	return rendering.Text
}
