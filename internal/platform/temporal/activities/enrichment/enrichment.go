package enrichment

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
)

const (
	// DescribeActivityName asks the platform to describe the first generated variation.
	DescribeActivityName = "customization.activities.Describe"
	// PersistActivityName stores a description on every variation and on the generation record.
	PersistActivityName = "customization.activities.Persist"
)

// PersistInput carries the description produced by the describe step.
type PersistInput struct {
	Enrichment  custtypes.EnrichmentInput
	Description string
}

// Activities groups the description enrichment steps.
type Activities struct {
	enricher *application.Enricher
}

// NewActivities wires the enricher into the Temporal activities bundle.
func NewActivities(enricher *application.Enricher) *Activities {
	return &Activities{enricher: enricher}
}

// Describe returns the generated description, or "" when there is nothing to describe.
func (a *Activities) Describe(ctx context.Context, input custtypes.EnrichmentInput) (string, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.enricher == nil {
		logger.Error("describe activity not initialized", "generationId", input.GenerationID)
		return "", errors.New("describe activity not initialized")
	}
	logger.Info("Describe activity started", "generationId", input.GenerationID)
	description, err := a.enricher.Describe(ctx, input)
	if err != nil {
		logger.Error("Describe activity failed", "generationId", input.GenerationID, "error", err)
		return "", err
	}
	logger.Info("Describe activity completed", "generationId", input.GenerationID, "length", len(description))
	return description, nil
}

// Persist saves the description. A prior attempt that already finished is not repeated.
func (a *Activities) Persist(ctx context.Context, input PersistInput) error {
	logger := activity.GetLogger(ctx)
	generationID := input.Enrichment.GenerationID
	if a == nil || a.enricher == nil {
		logger.Error("persist activity not initialized", "generationId", generationID)
		return errors.New("persist activity not initialized")
	}

	var hb persistHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("Persist already completed in prior attempt; skipping", "generationId", generationID)
		return nil
	}

	logger.Info("Persist activity started", "generationId", generationID, "variations", len(input.Enrichment.VariationIDs))
	if err := a.enricher.Persist(ctx, input.Enrichment, input.Description); err != nil {
		logger.Error("Persist activity failed", "generationId", generationID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, persistHeartbeat{Completed: true})
	logger.Info("Persist activity completed", "generationId", generationID)
	return nil
}

type persistHeartbeat struct {
	Completed bool
}
