package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	enrichmentactivities "github.com/Apurer/portrait-customizer/internal/platform/temporal/activities/enrichment"
)

// RunEnrichmentSequence describes the generated portrait, then stores the description.
func RunEnrichmentSequence(ctx workflow.Context, input custtypes.EnrichmentInput) (*custtypes.EnrichmentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("enrichment sequence started", "generationId", input.GenerationID)
	describeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	persistOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    5,
		},
	}

	var description string
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, describeOptions), enrichmentactivities.DescribeActivityName, input).Get(ctx, &description)
	if err != nil {
		logger.Error("enrichment sequence describe failed", "generationId", input.GenerationID, "error", err)
		return nil, err
	}
	result := &custtypes.EnrichmentResult{Description: description}
	if description == "" {
		logger.Info("enrichment sequence produced no description", "generationId", input.GenerationID)
		return result, nil
	}

	persistInput := enrichmentactivities.PersistInput{Enrichment: input, Description: description}
	if err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, persistOptions), enrichmentactivities.PersistActivityName, persistInput).Get(ctx, nil); err != nil {
		logger.Error("enrichment sequence persist failed", "generationId", input.GenerationID, "error", err)
		return result, err
	}
	logger.Info("enrichment sequence completed", "generationId", input.GenerationID)
	return result, nil
}
