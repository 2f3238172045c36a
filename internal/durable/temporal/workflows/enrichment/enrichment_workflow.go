package enrichment

import (
	"go.temporal.io/sdk/workflow"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/durable/temporal/sequences"
)

const (
	// WorkflowName is the public identifier for registering the workflow.
	WorkflowName = "customization.workflows.Enrichment"
	// TaskQueue is the queue consumed by the worker processing enrichment workflows.
	TaskQueue = "PORTRAIT_ENRICHMENT"
)

// WorkflowInput captures the payload required to enrich a generation.
type WorkflowInput struct {
	Enrichment custtypes.EnrichmentInput
	TraceID    string
}

// Workflow orchestrates description enrichment for one generation.
func Workflow(ctx workflow.Context, input WorkflowInput) (*custtypes.EnrichmentResult, error) {
	logger := workflow.GetLogger(ctx)
	generationID := input.Enrichment.GenerationID
	logger.Info("EnrichmentWorkflow started", withTraceID(input.TraceID, "generationId", generationID)...)
	result, err := sequences.RunEnrichmentSequence(ctx, input.Enrichment)
	if err != nil {
		logger.Error("EnrichmentWorkflow failed", withTraceID(input.TraceID, "generationId", generationID, "error", err)...)
		return result, err
	}
	logger.Info("EnrichmentWorkflow completed", withTraceID(input.TraceID, "generationId", generationID)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
