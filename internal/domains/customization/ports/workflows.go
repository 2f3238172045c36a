package ports

import (
	"context"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
)

// EnrichmentOrchestrator runs description enrichment for a generation, durably when possible.
type EnrichmentOrchestrator interface {
	Enrich(ctx context.Context, input custtypes.EnrichmentInput) (*custtypes.EnrichmentResult, error)
}
