package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
)

// Enricher describes a generated portrait and stores the description on every variation.
// Both steps are shared by the inline and the durable orchestrators.
type Enricher struct {
	descriptions ports.DescriptionGateway
	history      ports.GenerationLog
}

// NewEnricher wires the description gateway and the optional generation log.
func NewEnricher(descriptions ports.DescriptionGateway, history ports.GenerationLog) *Enricher {
	return &Enricher{descriptions: descriptions, history: history}
}

// Describe asks the platform for a description of the first variation.
func (e *Enricher) Describe(ctx context.Context, input custtypes.EnrichmentInput) (string, error) {
	if e == nil || e.descriptions == nil {
		return "", errors.New("enricher not configured")
	}
	if len(input.ImageData) == 0 {
		return "", nil
	}
	description, err := e.descriptions.Describe(ctx, input.ImageData, input.Filename, input.BreedName)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(description), nil
}

// Persist saves the description against each variation and the generation record.
// Every variation is attempted; failures are joined.
func (e *Enricher) Persist(ctx context.Context, input custtypes.EnrichmentInput, description string) error {
	if e == nil || e.descriptions == nil {
		return errors.New("enricher not configured")
	}
	if description == "" {
		return nil
	}
	var errs []error
	for _, id := range input.VariationIDs {
		if err := e.descriptions.SaveDescription(ctx, input.Credentials, id, description); err != nil {
			errs = append(errs, fmt.Errorf("variation %s: %w", id, err))
		}
	}
	if e.history != nil && input.GenerationID != "" {
		if err := e.history.SetDescription(ctx, input.GenerationID, description); err != nil && !errors.Is(err, ports.ErrGenerationNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run performs both steps in order.
func (e *Enricher) Run(ctx context.Context, input custtypes.EnrichmentInput) (*custtypes.EnrichmentResult, error) {
	description, err := e.Describe(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := e.Persist(ctx, input, description); err != nil {
		return &custtypes.EnrichmentResult{Description: description}, err
	}
	return &custtypes.EnrichmentResult{Description: description}, nil
}
