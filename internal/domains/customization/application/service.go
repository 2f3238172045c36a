package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

const (
	// DefaultProgressMessage is shown when the platform cannot supply progress messages in time.
	DefaultProgressMessage = "Creating your portrait..."
	// DefaultProgressTimeout bounds the progress-message call.
	DefaultProgressTimeout = 3 * time.Second
	// DefaultGenerationTimeout bounds a billed generation once submitted, independent of the caller.
	DefaultGenerationTimeout = 3 * time.Minute

	maxIdempotencyKeyLength = 200
)

// Dependencies are the collaborators the customization service needs. Catalog, Credits,
// Generator and Sessions are required; the rest are optional.
type Dependencies struct {
	Catalog     ports.CatalogGateway
	Credits     ports.CreditsGateway
	Generator   ports.GenerationGateway
	Sessions    ports.SessionStore
	History     ports.GenerationLog
	Idempotency ports.IdempotencyStore
	Enrichment  ports.EnrichmentOrchestrator
	Images      ports.ImagePreparer
	Prompts     ports.PromptPreviewer
}

// Service orchestrates the customization wizard use cases.
type Service struct {
	catalog     ports.CatalogGateway
	credits     ports.CreditsGateway
	generator   ports.GenerationGateway
	sessions    ports.SessionStore
	history     ports.GenerationLog
	idempotency ports.IdempotencyStore
	enrichment  ports.EnrichmentOrchestrator
	images      ports.ImagePreparer
	prompts     ports.PromptPreviewer

	logger            *slog.Logger
	now               func() time.Time
	newID             func() string
	allowZeroCost     bool
	purchaseURL       string
	progressTimeout   time.Duration
	generationTimeout time.Duration
}

// Option customizes the service.
type Option func(*Service)

// WithLogger injects the logger used for fail-soft warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session and generation id creation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithZeroCostGeneration toggles whether a selection that changes nothing may be generated.
func WithZeroCostGeneration(allow bool) Option {
	return func(s *Service) {
		s.allowZeroCost = allow
	}
}

// WithPurchaseURL sets where customers are sent to buy credits.
func WithPurchaseURL(url string) Option {
	return func(s *Service) {
		s.purchaseURL = url
	}
}

// WithProgressTimeout bounds the progress-message call.
func WithProgressTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.progressTimeout = timeout
		}
	}
}

// WithGenerationTimeout bounds a submitted generation and the bookkeeping that follows it.
func WithGenerationTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.generationTimeout = timeout
		}
	}
}

// NewService wires the customization service with its dependencies.
func NewService(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		catalog:           deps.Catalog,
		credits:           deps.Credits,
		generator:         deps.Generator,
		sessions:          deps.Sessions,
		history:           deps.History,
		idempotency:       deps.Idempotency,
		enrichment:        deps.Enrichment,
		images:            deps.Images,
		prompts:           deps.Prompts,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:               time.Now,
		newID:             uuid.NewString,
		allowZeroCost:     true,
		progressTimeout:   DefaultProgressTimeout,
		generationTimeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenSession starts a new wizard for the given portrait. Reference data and the credit
// balance are fetched concurrently; neither failure prevents the wizard from opening.
func (s *Service) OpenSession(ctx context.Context, input custtypes.OpenSessionInput) (*custtypes.SessionView, error) {
	source := domain.SourceImage{
		ID:        strings.TrimSpace(input.ImageID),
		Data:      input.ImageData,
		Prompt:    input.Prompt,
		Subject:   domain.AnimalAttributes{BreedID: input.BreedID, CoatID: input.CoatID},
		ThemeID:   input.ThemeID,
		StyleID:   input.StyleID,
		FormatID:  input.FormatID,
		TargetAge: input.TargetAge,
	}
	for _, companion := range input.Companions {
		source.Companions = append(source.Companions, domain.AnimalAttributes{BreedID: companion.BreedID, CoatID: companion.CoatID})
	}
	if err := source.Validate(); err != nil {
		return nil, mapError(err)
	}
	if s.images != nil {
		normalized, err := s.images.Normalize(source.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: image could not be decoded: %w", ErrInvalidInput, err)
		}
		source.Data = normalized
	}

	var (
		catalog      domain.Catalog
		balance      int
		balanceKnown bool
		g            errgroup.Group
	)
	g.Go(func() error { catalog.Breeds = s.catalog.ListBreeds(ctx); return nil })
	g.Go(func() error { catalog.Coats = s.catalog.ListCoats(ctx); return nil })
	g.Go(func() error { catalog.Outfits = s.catalog.ListOutfits(ctx); return nil })
	g.Go(func() error { catalog.Formats = s.catalog.ListFormats(ctx); return nil })
	g.Go(func() error { catalog.Themes = s.catalog.ListThemes(ctx); return nil })
	g.Go(func() error {
		value, err := s.credits.Balance(ctx, input.Credentials)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "credit balance unavailable", slog.String("error", err.Error()))
			return nil
		}
		balance, balanceKnown = value, true
		return nil
	})
	_ = g.Wait()

	wizard, err := domain.NewWizard(source, catalog)
	if err != nil {
		return nil, mapError(err)
	}
	session := custtypes.NewSession(s.newID(), wizard, input.Credentials, s.now())
	session.Balance = balance
	session.BalanceKnown = balanceKnown
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	session.Lock()
	defer session.Unlock()
	return s.view(session), nil
}

// GetSession returns a snapshot of an open session.
func (s *Service) GetSession(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	session, err := s.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, mapError(err)
	}
	session.Lock()
	defer session.Unlock()
	return s.view(session), nil
}

// CloseSession discards the session. The store closes it, which abandons its background work.
func (s *Service) CloseSession(ctx context.Context, input custtypes.SessionIdentifier) error {
	if _, err := s.sessions.Get(ctx, input.SessionID); err != nil {
		return mapError(err)
	}
	return mapError(s.sessions.Delete(ctx, input.SessionID))
}

// ChooseBreed keeps the current breed or picks a new one. A change of target breed
// re-resolves the compatible coats.
func (s *Service) ChooseBreed(ctx context.Context, input custtypes.ChooseBreedInput) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		var (
			moved bool
			err   error
		)
		if input.KeepCurrent {
			moved, err = session.Wizard.KeepCurrentBreed()
		} else {
			moved, err = session.Wizard.PickBreed(input.BreedID)
		}
		if err != nil {
			return err
		}
		if moved {
			s.resolveCoats(ctx, session)
		}
		return nil
	})
}

// ChooseCoat keeps the current coat or picks one from the compatible set.
func (s *Service) ChooseCoat(ctx context.Context, input custtypes.ChooseCoatInput) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		if input.KeepCurrent {
			return session.Wizard.KeepCurrentCoat()
		}
		return session.Wizard.PickCoat(input.CoatID)
	})
}

// ChooseOutfit applies an outfit.
func (s *Service) ChooseOutfit(ctx context.Context, input custtypes.ChooseOutfitInput) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		return session.Wizard.PickOutfit(input.OutfitID)
	})
}

// ClearOutfit removes the outfit.
func (s *Service) ClearOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		return session.Wizard.ClearOutfit()
	})
}

// Next advances one step. Entering coat selection resolves the compatible coats.
func (s *Service) Next(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		step, err := session.Wizard.Next()
		if err != nil {
			return err
		}
		if step == domain.StepCoatSelection {
			s.resolveCoats(ctx, session)
		}
		return nil
	})
}

// Back moves one step toward breed selection. Entering coat selection resolves the compatible coats.
func (s *Service) Back(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		step, err := session.Wizard.Back()
		if err != nil {
			return err
		}
		if step == domain.StepCoatSelection {
			s.resolveCoats(ctx, session)
		}
		return nil
	})
}

// SkipOutfit moves from outfit selection to preview with no outfit.
func (s *Service) SkipOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error) {
	return s.mutate(ctx, input.SessionID, func(session *custtypes.Session) error {
		_, err := session.Wizard.SkipOutfit()
		return err
	})
}

// Quote returns the current credit cost against the known balance.
func (s *Service) Quote(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.QuoteView, error) {
	session, err := s.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, mapError(err)
	}
	session.Lock()
	defer session.Unlock()
	quote := s.quoteView(session)
	return &quote, nil
}

// GetGeneration loads a recorded generation.
func (s *Service) GetGeneration(ctx context.Context, input custtypes.GenerationIdentifier) (*custtypes.GenerationProjection, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrEmptyGenerationID)
	}
	if s.history == nil {
		return nil, ErrGenerationNotFound
	}
	return s.history.GetByID(ctx, input.ID)
}

// ListGenerationsForImage lists generations made from one source image, newest first.
func (s *Service) ListGenerationsForImage(ctx context.Context, input custtypes.ImageGenerationsQuery) ([]*custtypes.GenerationProjection, error) {
	if strings.TrimSpace(input.ImageID) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrMissingImageID)
	}
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListByImage(ctx, input.ImageID)
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*custtypes.Session) error) (*custtypes.SessionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	session.Lock()
	defer session.Unlock()
	if session.Generating {
		return nil, ErrGenerationInProgress
	}
	if err := fn(session); err != nil {
		return nil, mapError(err)
	}
	return s.view(session), nil
}

// resolveCoats fetches the compatible coats for the current target breed. Callers hold the session lock.
func (s *Service) resolveCoats(ctx context.Context, session *custtypes.Session) {
	breedID := session.Wizard.TargetBreedID()
	if breedID == "" {
		session.Wizard.ApplyCoatResolution(breedID, nil, true)
		return
	}
	coats, err := s.catalog.CoatsForBreed(ctx, breedID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "coat resolution failed",
			slog.String("session.id", session.ID),
			slog.String("breed.id", breedID),
			slog.String("error", err.Error()),
		)
		session.Wizard.ApplyCoatResolution(breedID, nil, false)
		return
	}
	session.Wizard.ApplyCoatResolution(breedID, coats, true)
}

var _ ports.Service = (*Service)(nil)
