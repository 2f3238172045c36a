package domain

import (
	"errors"
	"strings"
)

// VariationMetadata records the attributes the generator actually applied.
type VariationMetadata struct {
	Breed  string
	Coat   string
	Outfit string
}

// GeneratedVariation is one image returned by a generation call.
type GeneratedVariation struct {
	ID          string
	ImageData   []byte
	Filename    string
	Metadata    VariationMetadata
	Description string
}

var (
	ErrEmptyGenerationID = errors.New("generation id is required")
	ErrNoVariations      = errors.New("generation returned no variations")
)

// GenerationRecord is the ledger entry written after a successful generation.
type GenerationRecord struct {
	ID               string
	SessionID        string
	OriginalImageID  string
	BreedID          string
	CoatID           string
	OutfitID         string
	MultiAnimal      bool
	CreditsCharged   int
	// CreditsRemaining is the platform-reported balance after the debit, nil when unknown.
	CreditsRemaining *int
	VariationIDs     []string
	Description      string
}

// NewGenerationRecord captures the outcome of a generation request.
func NewGenerationRecord(id, sessionID string, req GenerationRequest, variations []GeneratedVariation, creditsRemaining *int) (*GenerationRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyGenerationID
	}
	if len(variations) == 0 {
		return nil, ErrNoVariations
	}
	rec := &GenerationRecord{
		ID:               id,
		SessionID:        sessionID,
		OriginalImageID:  req.Source().ID,
		OutfitID:         req.OutfitID(),
		CreditsCharged:   req.Credits().Total(),
		CreditsRemaining: creditsRemaining,
	}
	switch r := req.(type) {
	case SingleAnimalRequest:
		rec.BreedID = r.Target.BreedID
		rec.CoatID = r.Target.CoatID
	case MultiAnimalRequest:
		rec.MultiAnimal = true
		if len(r.Animals) > 0 {
			rec.BreedID = r.Animals[0].Target.BreedID
			rec.CoatID = r.Animals[0].Target.CoatID
		}
	}
	for _, v := range variations {
		rec.VariationIDs = append(rec.VariationIDs, v.ID)
	}
	return rec, nil
}

// Describe stores the enrichment description.
func (r *GenerationRecord) Describe(description string) {
	r.Description = strings.TrimSpace(description)
}
