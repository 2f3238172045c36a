package types

import (
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
	"github.com/Apurer/portrait-customizer/internal/shared/projection"
)

// GenerationProjection is a recorded generation plus persistence metadata.
type GenerationProjection = projection.Projection[*domain.GenerationRecord]

// ChoiceView renders a keep/pick choice.
type ChoiceView struct {
	Kind string
	ID   string
	Name string
}

// QuoteView is the credit cost of the current selection against the known balance.
type QuoteView struct {
	Transformation int
	Outfit         int
	Total          int
	Balance        int
	BalanceKnown   bool
	BalanceAfter   int
	Sufficient     bool
	PurchaseURL    string
}

// CoatGridView is what the coat-selection step renders.
type CoatGridView struct {
	BreedID     string
	Status      string
	Placeholder string
	Coats       []domain.Coat
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID               string
	Step             string
	Source           domain.AnimalAttributes
	MultiAnimal      bool
	Breed            ChoiceView
	Coat             ChoiceView
	Outfit           *domain.Outfit
	CoatGrid         CoatGridView
	Catalog          domain.Catalog
	Quote            QuoteView
	Generating       bool
	ProgressMessages []string
	Variations       []domain.GeneratedVariation
	GenerationID     string
	Description      string
	PromptPreview    string
}

// GenerateResult is returned by a generation submission.
type GenerateResult struct {
	Session    *SessionView
	Generation *GenerationProjection
	Replayed   bool
}
