package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/application"
	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/ports"
	enrichmentworkflow "github.com/Apurer/portrait-customizer/internal/durable/temporal/workflows/enrichment"
)

var (
	_ ports.EnrichmentOrchestrator = (*TemporalEnrichment)(nil)
	_ ports.EnrichmentOrchestrator = (*InlineEnrichment)(nil)
)

// TemporalEnrichment runs description enrichment as a Temporal workflow.
type TemporalEnrichment struct {
	client    client.Client
	taskQueue string
}

// NewTemporalEnrichment wires a Temporal client into the orchestrator.
func NewTemporalEnrichment(c client.Client) *TemporalEnrichment {
	return &TemporalEnrichment{client: c, taskQueue: enrichmentworkflow.TaskQueue}
}

// Enrich starts the workflow and waits for its result. Cancelling ctx stops the wait only;
// the workflow keeps running on the worker.
func (o *TemporalEnrichment) Enrich(ctx context.Context, input custtypes.EnrichmentInput) (*custtypes.EnrichmentResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal enrichment not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildEnrichmentWorkflowID(input.GenerationID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		enrichmentworkflow.WorkflowName,
		enrichmentworkflow.WorkflowInput{Enrichment: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result custtypes.EnrichmentResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InlineEnrichment runs the enricher in process, for tests or when Temporal is unavailable.
type InlineEnrichment struct {
	enricher *application.Enricher
}

// NewInlineEnrichment wraps the enricher for synchronous execution.
func NewInlineEnrichment(enricher *application.Enricher) *InlineEnrichment {
	return &InlineEnrichment{enricher: enricher}
}

// Enrich describes and persists without durable orchestration.
func (o *InlineEnrichment) Enrich(ctx context.Context, input custtypes.EnrichmentInput) (*custtypes.EnrichmentResult, error) {
	if o == nil || o.enricher == nil {
		return nil, errors.New("inline enrichment not configured")
	}
	return o.enricher.Run(ctx, input)
}

// buildEnrichmentWorkflowID is deterministic per generation so a retried start attaches to the same run.
func buildEnrichmentWorkflowID(generationID string) string {
	if generationID == "" {
		return fmt.Sprintf("portrait-enrichment-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("portrait-enrichment-%s", hashKey(generationID))
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
