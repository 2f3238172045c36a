package ports

import (
	"context"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
)

// Service defines the customization use cases exposed to adapters (inbound/driving port).
type Service interface {
	OpenSession(ctx context.Context, input custtypes.OpenSessionInput) (*custtypes.SessionView, error)
	GetSession(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)
	CloseSession(ctx context.Context, input custtypes.SessionIdentifier) error
	ChooseBreed(ctx context.Context, input custtypes.ChooseBreedInput) (*custtypes.SessionView, error)
	ChooseCoat(ctx context.Context, input custtypes.ChooseCoatInput) (*custtypes.SessionView, error)
	ChooseOutfit(ctx context.Context, input custtypes.ChooseOutfitInput) (*custtypes.SessionView, error)
	ClearOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)
	Next(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)
	Back(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)
	SkipOutfit(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.SessionView, error)
	Quote(ctx context.Context, input custtypes.SessionIdentifier) (*custtypes.QuoteView, error)
	Generate(ctx context.Context, input custtypes.GenerateInput) (*custtypes.GenerateResult, error)
	GetGeneration(ctx context.Context, input custtypes.GenerationIdentifier) (*custtypes.GenerationProjection, error)
	ListGenerationsForImage(ctx context.Context, input custtypes.ImageGenerationsQuery) ([]*custtypes.GenerationProjection, error)
}
