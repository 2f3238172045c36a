package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	platformclient "github.com/Apurer/portrait-customizer/internal/clients/http/platform"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

var (
	_ ports.CatalogGateway     = (*Gateway)(nil)
	_ ports.CreditsGateway     = (*Gateway)(nil)
	_ ports.GenerationGateway  = (*Gateway)(nil)
	_ ports.DescriptionGateway = (*Gateway)(nil)
)

// Gateway adapts the platform REST client to the customization ports.
type Gateway struct {
	client *platformclient.Client
	logger *slog.Logger
}

// NewGateway wires a platform client into the outbound ports.
func NewGateway(client *platformclient.Client, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{client: client, logger: logger}
}

// ListBreeds fetches breeds, degrading to an empty list.
func (g *Gateway) ListBreeds(ctx context.Context) []domain.Breed {
	rows, err := g.client.ListBreeds(ctx)
	if err != nil {
		g.warn(ctx, "breeds", err)
		return nil
	}
	return toBreeds(rows)
}

// ListCoats fetches coats, degrading to an empty list.
func (g *Gateway) ListCoats(ctx context.Context) []domain.Coat {
	rows, err := g.client.ListCoats(ctx)
	if err != nil {
		g.warn(ctx, "coats", err)
		return nil
	}
	return toCoats(rows)
}

// ListOutfits fetches outfits, degrading to an empty list.
func (g *Gateway) ListOutfits(ctx context.Context) []domain.Outfit {
	rows, err := g.client.ListOutfits(ctx)
	if err != nil {
		g.warn(ctx, "outfits", err)
		return nil
	}
	return toOutfits(rows)
}

// ListFormats fetches formats, degrading to an empty list.
func (g *Gateway) ListFormats(ctx context.Context) []domain.Format {
	rows, err := g.client.ListFormats(ctx)
	if err != nil {
		g.warn(ctx, "formats", err)
		return nil
	}
	return toFormats(rows)
}

// ListThemes fetches themes, degrading to an empty list.
func (g *Gateway) ListThemes(ctx context.Context) []domain.Theme {
	rows, err := g.client.ListThemes(ctx)
	if err != nil {
		g.warn(ctx, "themes", err)
		return nil
	}
	return toThemes(rows)
}

// CoatsForBreed resolves the compatible coats of a breed. An empty id resolves to no coats without a call.
func (g *Gateway) CoatsForBreed(ctx context.Context, breedID string) ([]domain.Coat, error) {
	breedID = strings.TrimSpace(breedID)
	if breedID == "" {
		return nil, nil
	}
	rows, err := g.client.BreedCoats(ctx, breedID)
	if err != nil {
		g.warn(ctx, "breed-coats", err, slog.String("breed.id", breedID))
		return nil, fmt.Errorf("%w: %w", ports.ErrUpstreamUnavailable, err)
	}
	return toCompatibleCoats(rows), nil
}

// Balance reads the customer's remaining credits.
func (g *Gateway) Balance(ctx context.Context, creds custtypes.Credentials) (int, error) {
	resp, err := g.client.Credits(ctx, creds.Bearer)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ports.ErrUpstreamUnavailable, err)
	}
	return resp.Credits.Remaining, nil
}

// ProgressMessages fetches display strings for an in-flight generation.
func (g *Gateway) ProgressMessages(ctx context.Context, creds custtypes.Credentials, req domain.GenerationRequest) ([]string, error) {
	return g.client.ProgressMessages(ctx, creds.Bearer, toProgressRequest(req))
}

// Generate submits a generation request and decodes the returned variations.
func (g *Gateway) Generate(ctx context.Context, creds custtypes.Credentials, req domain.GenerationRequest) (*ports.GenerationOutcome, error) {
	resp, err := g.client.GenerateVariations(ctx, creds.Bearer, toGenerateRequest(req))
	if err != nil {
		var apiErr *platformclient.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusPaymentRequired {
				return nil, fmt.Errorf("%w: %s", ports.ErrUpstreamInsufficientCredits, apiErr.Message)
			}
			return nil, &ports.GenerationRejectedError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrUpstreamUnavailable, err)
	}
	if !resp.Success {
		return nil, &ports.GenerationRejectedError{StatusCode: http.StatusOK, Message: resp.Error}
	}
	variations, err := toVariations(resp.Variations)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrUpstreamUnavailable, err)
	}
	return &ports.GenerationOutcome{Variations: variations, CreditsRemaining: resp.CreditsRemaining}, nil
}

// Describe requests a description of an image.
func (g *Gateway) Describe(ctx context.Context, image []byte, filename, breedName string) (string, error) {
	return g.client.DescribeImage(ctx, image, filename, breedName)
}

// SaveDescription patches a description onto a generated image.
func (g *Gateway) SaveDescription(ctx context.Context, creds custtypes.Credentials, variationID, description string) error {
	return g.client.UpdateGeneratedImageDescription(ctx, creds.Bearer, variationID, description)
}

func (g *Gateway) warn(ctx context.Context, entity string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("entity", entity), slog.String("error", err.Error()))
	g.logger.LogAttrs(ctx, slog.LevelWarn, "platform reference fetch failed", attrs...)
}
