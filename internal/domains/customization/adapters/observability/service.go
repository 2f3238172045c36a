package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

const tracerName = "github.com/Apurer/portrait-customizer/internal/domains/customization/adapters/observability/service"

// Service decorates the customization port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// OpenSession starts a wizard with instrumentation. Credentials never reach logs or spans.
func (s *Service) OpenSession(ctx context.Context, input custtypes.OpenSessionInput) (*custtypes.SessionView, error) {
	ctx, span := s.startSpan(ctx, "Service.OpenSession",
		attribute.String("image.id", input.ImageID),
		attribute.Int("image.companions", len(input.Companions)),
	)
	defer span.End()

	s.logInfo(ctx, "opening customization session", slog.String("image.id", input.ImageID))
	result, err := s.inner.OpenSession(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to open session", slog.String("image.id", input.ImageID))
	}
	s.metrics.recordOpened(ctx, result.MultiAnimal)
	span.SetAttributes(attribute.String("session.id", result.ID))
	s.logInfo(ctx, "session opened",
		slog.String("session.id", result.ID),
		slog.Bool("balance.known", result.Quote.BalanceKnown),
		slog.Int("catalog.breeds", len(result.Catalog.Breeds)),
	)
	return result, nil
}

// GetSession returns the current view of a session.
func (s *Service) GetSession(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.GetSession", "failed to load session", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		return s.inner.GetSession(ctx, input)
	})
}

// CloseSession discards a session.
func (s *Service) CloseSession(ctx context.Context, input custtypes.SessionIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.CloseSession", attribute.String("session.id", input.SessionID))
	defer span.End()

	if err := s.inner.CloseSession(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to close session", slog.String("session.id", input.SessionID))
	}
	s.metrics.recordClosed(ctx)
	s.logInfo(ctx, "session closed", slog.String("session.id", input.SessionID))
	return nil
}

// ChooseBreed records the breed decision.
func (s *Service) ChooseBreed(ctx context.Context, input custtypes.ChooseBreedInput) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.ChooseBreed", "failed to choose breed", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Bool("choice.keep", input.KeepCurrent),
			attribute.String("breed.id", input.BreedID),
		)
		return s.inner.ChooseBreed(ctx, input)
	})
}

// ChooseCoat records the coat decision.
func (s *Service) ChooseCoat(ctx context.Context, input custtypes.ChooseCoatInput) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.ChooseCoat", "failed to choose coat", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.Bool("choice.keep", input.KeepCurrent),
			attribute.String("coat.id", input.CoatID),
		)
		return s.inner.ChooseCoat(ctx, input)
	})
}

// ChooseOutfit applies an outfit.
func (s *Service) ChooseOutfit(ctx context.Context, input custtypes.ChooseOutfitInput) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.ChooseOutfit", "failed to choose outfit", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("outfit.id", input.OutfitID))
		return s.inner.ChooseOutfit(ctx, input)
	})
}

// ClearOutfit removes the outfit.
func (s *Service) ClearOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.ClearOutfit", "failed to clear outfit", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		return s.inner.ClearOutfit(ctx, input)
	})
}

// Next advances the wizard.
func (s *Service) Next(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.Next", "failed to advance wizard", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		return s.inner.Next(ctx, input)
	})
}

// Back returns to the previous step.
func (s *Service) Back(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.Back", "failed to step back", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		return s.inner.Back(ctx, input)
	})
}

// SkipOutfit jumps to the preview without an outfit.
func (s *Service) SkipOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.sessionCall(ctx, "Service.SkipOutfit", "failed to skip outfit", input.SessionID, func(ctx context.Context) (*custtypes.SessionView, error) {
		return s.inner.SkipOutfit(ctx, input)
	})
}

// Quote prices the current selection.
func (s *Service) Quote(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.QuoteView, error) {
	ctx, span := s.startSpan(ctx, "Service.Quote", attribute.String("session.id", input.SessionID))
	defer span.End()

	result, err := s.inner.Quote(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to quote selection", slog.String("session.id", input.SessionID))
	}
	span.SetAttributes(
		attribute.Int("credits.total", result.Total),
		attribute.Bool("credits.sufficient", result.Sufficient),
	)
	return result, nil
}

// Generate submits the previewed selection with instrumentation.
func (s *Service) Generate(ctx context.Context, input custtypes.GenerateInput) (*custtypes.GenerateResult, error) {
	ctx, span := s.startSpan(ctx, "Service.Generate",
		attribute.String("session.id", input.SessionID),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "submitting generation", slog.String("session.id", input.SessionID))
	result, err := s.inner.Generate(ctx, input)
	if err != nil {
		var insufficient *application.InsufficientCreditsError
		if errors.As(err, &insufficient) {
			s.metrics.recordInsufficient(ctx)
			span.SetAttributes(
				attribute.Int("credits.required", insufficient.Required),
				attribute.Int("credits.balance", insufficient.Balance),
			)
		} else {
			s.metrics.recordFailed(ctx, failureReason(err))
		}
		return nil, s.handleError(ctx, span, err, "generation failed", slog.String("session.id", input.SessionID))
	}

	attrs := []slog.Attr{slog.String("session.id", input.SessionID), slog.Bool("replayed", result.Replayed)}
	if result.Generation != nil && result.Generation.Entity != nil {
		rec := result.Generation.Entity
		span.SetAttributes(
			attribute.String("generation.id", rec.ID),
			attribute.Int("generation.variations", len(rec.VariationIDs)),
			attribute.Int("credits.charged", rec.CreditsCharged),
		)
		attrs = append(attrs, slog.String("generation.id", rec.ID), slog.Int("credits.charged", rec.CreditsCharged))
		if !result.Replayed {
			s.metrics.recordSucceeded(ctx, rec.MultiAnimal, rec.CreditsCharged)
		}
	}
	if result.Replayed {
		s.metrics.recordReplayed(ctx)
	}
	s.logInfo(ctx, "generation completed", attrs...)
	return result, nil
}

// GetGeneration loads a recorded generation.
func (s *Service) GetGeneration(ctx context.Context, input custtypes.GenerationIdentifier) (*custtypes.GenerationProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetGeneration", attribute.String("generation.id", input.ID))
	defer span.End()

	result, err := s.inner.GetGeneration(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load generation", slog.String("generation.id", input.ID))
	}
	return result, nil
}

// ListGenerationsForImage lists generations made from a source image.
func (s *Service) ListGenerationsForImage(ctx context.Context, input custtypes.ImageGenerationsQuery) ([]*custtypes.GenerationProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListGenerationsForImage", attribute.String("image.id", input.ImageID))
	defer span.End()

	result, err := s.inner.ListGenerationsForImage(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list generations", slog.String("image.id", input.ImageID))
	}
	span.SetAttributes(attribute.Int("generation.result.count", len(result)))
	s.logInfo(ctx, "listed generations", slog.String("image.id", input.ImageID), slog.Int("count", len(result)))
	return result, nil
}

func (s *Service) sessionCall(ctx context.Context, name, failMsg, sessionID string, call func(context.Context) (*custtypes.SessionView, error)) (*custtypes.SessionView, error) {
	ctx, span := s.startSpan(ctx, name, attribute.String("session.id", sessionID))
	defer span.End()

	result, err := call(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, failMsg, slog.String("session.id", sessionID))
	}
	span.SetAttributes(attribute.String("wizard.step", result.Step))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, errorLevel(err), msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

// errorLevel keeps caller mistakes out of the error stream.
func errorLevel(err error) slog.Level {
	switch {
	case errors.Is(err, application.ErrInvalidInput),
		errors.Is(err, application.ErrInvalidTransition),
		errors.Is(err, application.ErrSessionNotFound),
		errors.Is(err, application.ErrGenerationNotFound),
		errors.Is(err, application.ErrGenerationInProgress),
		errors.Is(err, application.ErrZeroCostGeneration),
		errors.Is(err, application.ErrIdempotencyConflict),
		errors.Is(err, application.ErrInsufficientCredits):
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, application.ErrGenerationFailed):
		return "rejected"
	case errors.Is(err, application.ErrUpstreamUnavailable):
		return "upstream"
	case errors.Is(err, application.ErrGenerationInProgress):
		return "in_progress"
	default:
		return "invalid"
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	sessionsOpened       metric.Int64Counter
	sessionsClosed       metric.Int64Counter
	generationsSucceeded metric.Int64Counter
	generationsFailed    metric.Int64Counter
	generationsReplayed  metric.Int64Counter
	insufficientCredits  metric.Int64Counter
	creditsCharged       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	opened, _ := m.Int64Counter("customization.sessions.opened", metric.WithDescription("Number of wizard sessions opened"))
	closed, _ := m.Int64Counter("customization.sessions.closed", metric.WithDescription("Number of wizard sessions closed explicitly"))
	succeeded, _ := m.Int64Counter("customization.generations.succeeded", metric.WithDescription("Number of successful generations"))
	failed, _ := m.Int64Counter("customization.generations.failed", metric.WithDescription("Number of failed generation submissions"))
	replayed, _ := m.Int64Counter("customization.generations.replayed", metric.WithDescription("Number of submissions answered from an idempotency key"))
	insufficient, _ := m.Int64Counter("customization.generations.insufficient_credits", metric.WithDescription("Number of submissions rejected for lack of credits"))
	charged, _ := m.Int64Counter("customization.credits.charged", metric.WithDescription("Credits charged for successful generations"))
	return serviceMetrics{
		sessionsOpened:       opened,
		sessionsClosed:       closed,
		generationsSucceeded: succeeded,
		generationsFailed:    failed,
		generationsReplayed:  replayed,
		insufficientCredits:  insufficient,
		creditsCharged:       charged,
	}
}

func (m serviceMetrics) recordOpened(ctx context.Context, multiAnimal bool) {
	addCounter(ctx, m.sessionsOpened, 1, attribute.Bool("multi_animal", multiAnimal))
}

func (m serviceMetrics) recordClosed(ctx context.Context) {
	addCounter(ctx, m.sessionsClosed, 1)
}

func (m serviceMetrics) recordSucceeded(ctx context.Context, multiAnimal bool, credits int) {
	addCounter(ctx, m.generationsSucceeded, 1, attribute.Bool("multi_animal", multiAnimal))
	addCounter(ctx, m.creditsCharged, int64(credits))
}

func (m serviceMetrics) recordFailed(ctx context.Context, reason string) {
	addCounter(ctx, m.generationsFailed, 1, attribute.String("reason", reason))
}

func (m serviceMetrics) recordReplayed(ctx context.Context) {
	addCounter(ctx, m.generationsReplayed, 1)
}

func (m serviceMetrics) recordInsufficient(ctx context.Context) {
	addCounter(ctx, m.insufficientCredits, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
