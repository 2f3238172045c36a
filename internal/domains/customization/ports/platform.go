package ports

import (
	"context"
	"errors"
	"fmt"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

var (
	// ErrUpstreamUnavailable covers network, timeout and decoding failures talking to the platform.
	ErrUpstreamUnavailable = errors.New("platform unavailable")
	// ErrUpstreamInsufficientCredits is returned when the platform refuses a debit.
	ErrUpstreamInsufficientCredits = errors.New("platform reported insufficient credits")
)

// GenerationRejectedError is a generation the platform answered but declined.
type GenerationRejectedError struct {
	StatusCode int
	Message    string
}

func (e *GenerationRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation rejected (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("generation rejected (status %d): %s", e.StatusCode, e.Message)
}

// CatalogGateway reads reference data. List operations are fail-soft and return
// an empty slice on any failure.
type CatalogGateway interface {
	ListBreeds(ctx context.Context) []domain.Breed
	ListCoats(ctx context.Context) []domain.Coat
	ListOutfits(ctx context.Context) []domain.Outfit
	ListFormats(ctx context.Context) []domain.Format
	ListThemes(ctx context.Context) []domain.Theme
	// CoatsForBreed returns compatible coats in relevance order. A non-nil error means
	// the set could not be resolved; the returned slice is then empty.
	CoatsForBreed(ctx context.Context, breedID string) ([]domain.Coat, error)
}

// CreditsGateway reads the customer's credit balance.
type CreditsGateway interface {
	Balance(ctx context.Context, creds custtypes.Credentials) (int, error)
}

// GenerationOutcome is a successful generation response.
type GenerationOutcome struct {
	Variations []domain.GeneratedVariation
	// CreditsRemaining is the platform's balance after debit, nil when it was not reported.
	CreditsRemaining *int
}

// GenerationGateway submits generation requests.
type GenerationGateway interface {
	ProgressMessages(ctx context.Context, creds custtypes.Credentials, req domain.GenerationRequest) ([]string, error)
	Generate(ctx context.Context, creds custtypes.Credentials, req domain.GenerationRequest) (*GenerationOutcome, error)
}

// DescriptionGateway produces and stores natural-language portrait descriptions.
type DescriptionGateway interface {
	Describe(ctx context.Context, image []byte, filename, breedName string) (string, error)
	SaveDescription(ctx context.Context, creds custtypes.Credentials, variationID, description string) error
}

// ImagePreparer normalizes image payloads before they leave the service.
type ImagePreparer interface {
	Normalize(data []byte) ([]byte, error)
	Thumbnail(data []byte) ([]byte, error)
}

// PromptPreviewer renders the default generation prompt for the wizard preview.
type PromptPreviewer interface {
	Preview(values map[string]string) string
}
