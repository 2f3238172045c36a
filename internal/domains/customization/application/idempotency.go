package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

type normalizedGeneration struct {
	SessionID string             `json:"sessionId"`
	ImageID   string             `json:"imageId"`
	Kind      string             `json:"kind"`
	Animals   []normalizedAnimal `json:"animals"`
	OutfitID  string             `json:"outfitId,omitempty"`
	Credits   int                `json:"credits"`
}

type normalizedAnimal struct {
	Position     int    `json:"position"`
	BreedID      string `json:"breedId"`
	CoatID       string `json:"coatId"`
	BreedChanged bool   `json:"breedChanged"`
	CoatChanged  bool   `json:"coatChanged"`
}

// FingerprintGeneration builds a deterministic hash of a generation request (excluding the idempotency key).
func FingerprintGeneration(sessionID string, req domain.GenerationRequest) (string, error) {
	payload, err := json.Marshal(normalizeGeneration(sessionID, req))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeGeneration(sessionID string, req domain.GenerationRequest) normalizedGeneration {
	normalized := normalizedGeneration{
		SessionID: sessionID,
		ImageID:   req.Source().ID,
		OutfitID:  req.OutfitID(),
		Credits:   req.Credits().Total(),
	}
	switch r := req.(type) {
	case domain.SingleAnimalRequest:
		normalized.Kind = "single"
		normalized.Animals = []normalizedAnimal{normalizeTarget(0, r.Target)}
	case domain.MultiAnimalRequest:
		normalized.Kind = "multi"
		for _, slot := range r.Animals {
			normalized.Animals = append(normalized.Animals, normalizeTarget(slot.Position, slot.Target))
		}
	}
	return normalized
}

func normalizeTarget(position int, target domain.AnimalTarget) normalizedAnimal {
	return normalizedAnimal{
		Position:     position,
		BreedID:      target.BreedID,
		CoatID:       target.CoatID,
		BreedChanged: target.BreedChanged,
		CoatChanged:  target.CoatChanged,
	}
}

func scopedIdempotencyKey(sessionID, key string) string {
	return sessionID + ":" + key
}
