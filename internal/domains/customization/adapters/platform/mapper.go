package platform

import (
	"encoding/base64"
	"errors"
	"strings"

	platformclient "github.com/Apurer/portrait-customizer/internal/clients/http/platform"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

var errBadImageData = errors.New("variation image data is not valid base64")

func toBreeds(rows []platformclient.Breed) []domain.Breed {
	out := make([]domain.Breed, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		out = append(out, domain.Breed{
			ID:                r.ID.String(),
			Name:              r.Name,
			AnimalType:        domain.ParseAnimalType(r.AnimalType),
			PersonalityTraits: append([]string(nil), r.PersonalityTraits...),
			PopularityRank:    r.PopularityRank,
		})
	}
	return out
}

func toCoat(r platformclient.Coat) domain.Coat {
	return domain.Coat{
		ID:          r.ID.String(),
		Name:        r.Name,
		HexColor:    r.HexColor,
		PatternType: r.PatternType,
		Rarity:      r.Rarity,
		AnimalType:  domain.ParseAnimalType(r.AnimalType),
	}
}

func toCoats(rows []platformclient.Coat) []domain.Coat {
	out := make([]domain.Coat, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		out = append(out, toCoat(r))
	}
	return out
}

// toCompatibleCoats keeps join-row order, skips rows without a nested coat and drops duplicates.
func toCompatibleCoats(rows []platformclient.BreedCoat) []domain.Coat {
	out := make([]domain.Coat, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		nested := r.Nested()
		if nested == nil || nested.ID == "" {
			continue
		}
		if _, dup := seen[nested.ID.String()]; dup {
			continue
		}
		seen[nested.ID.String()] = struct{}{}
		out = append(out, toCoat(*nested))
	}
	return out
}

func toOutfits(rows []platformclient.Outfit) []domain.Outfit {
	out := make([]domain.Outfit, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		outfit := domain.Outfit{
			ID:                  r.ID.String(),
			Name:                r.Name,
			Category:            r.Category,
			ClothingDescription: r.ClothingDescription,
		}
		for _, animal := range r.AnimalCompatibility {
			if parsed := domain.ParseAnimalType(animal); parsed != "" {
				outfit.AnimalCompatibility = append(outfit.AnimalCompatibility, parsed)
			}
		}
		out = append(out, outfit)
	}
	return out
}

func toFormats(rows []platformclient.Format) []domain.Format {
	out := make([]domain.Format, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		out = append(out, domain.Format{ID: r.ID.String(), Name: r.Name, AspectRatio: r.AspectRatio, Description: r.Description})
	}
	return out
}

func toThemes(rows []platformclient.Theme) []domain.Theme {
	out := make([]domain.Theme, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" {
			continue
		}
		out = append(out, domain.Theme{ID: r.ID.String(), Name: r.Name, Description: r.Description, StyleID: r.StyleID.String()})
	}
	return out
}

func toGenerateRequest(req domain.GenerationRequest) platformclient.GenerateVariationsRequest {
	source := req.Source()
	body := platformclient.GenerateVariationsRequest{
		OriginalImageData: base64.StdEncoding.EncodeToString(source.Data),
		OriginalImageID:   source.ID,
		OriginalPrompt:    source.Prompt,
		CurrentBreed:      source.Subject.BreedID,
		CurrentCoat:       source.Subject.CoatID,
		CurrentTheme:      source.ThemeID,
		CurrentStyle:      source.StyleID,
		CurrentFormat:     source.FormatID,
		TargetAge:         source.TargetAge,
	}
	outfitID := req.OutfitID()
	switch r := req.(type) {
	case domain.SingleAnimalRequest:
		body.VariationConfig = variationConfig(r.Target, outfitID)
		body.AIDescription = r.AIDescription
	case domain.MultiAnimalRequest:
		body.IsMultiAnimal = true
		body.AIDescription = r.AIDescription
		cfg := &platformclient.MultiAnimalConfig{OutfitID: outfitID}
		for _, slot := range r.Animals {
			cfg.Animals = append(cfg.Animals, platformclient.AnimalConfig{
				Position:     slot.Position,
				BreedID:      slot.Target.BreedID,
				CoatID:       slot.Target.CoatID,
				BreedChanged: slot.Target.BreedChanged,
				CoatChanged:  slot.Target.CoatChanged,
			})
		}
		if len(r.Animals) > 0 {
			body.VariationConfig = variationConfig(r.Animals[0].Target, outfitID)
		}
		body.MultiAnimalConfig = cfg
	}
	return body
}

func variationConfig(target domain.AnimalTarget, outfitID string) platformclient.VariationConfig {
	return platformclient.VariationConfig{
		BreedID:      target.BreedID,
		CoatID:       target.CoatID,
		OutfitID:     outfitID,
		BreedChanged: target.BreedChanged,
		CoatChanged:  target.CoatChanged,
		OutfitAdded:  outfitID != "",
	}
}

func toProgressRequest(req domain.GenerationRequest) platformclient.ProgressMessagesRequest {
	body := platformclient.ProgressMessagesRequest{CurrentBreed: req.Source().Subject.BreedName}
	var target domain.AnimalTarget
	var outfit *domain.Outfit
	switch r := req.(type) {
	case domain.SingleAnimalRequest:
		target, outfit = r.Target, r.Outfit
	case domain.MultiAnimalRequest:
		if len(r.Animals) > 0 {
			target = r.Animals[0].Target
		}
		outfit = r.Outfit
	}
	body.TargetBreed = target.BreedName
	body.TargetCoat = target.CoatName
	if outfit != nil {
		body.Outfit = outfit.Name
	}
	return body
}

func toVariations(rows []platformclient.Variation) ([]domain.GeneratedVariation, error) {
	out := make([]domain.GeneratedVariation, 0, len(rows))
	for _, r := range rows {
		data, err := decodeImageData(r.ImageData)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.GeneratedVariation{
			ID:        r.ID.String(),
			ImageData: data,
			Filename:  r.Filename,
			Metadata: domain.VariationMetadata{
				Breed:  r.Metadata.Breed,
				Coat:   r.Metadata.Coat,
				Outfit: r.Metadata.Outfit,
			},
		})
	}
	return out, nil
}

// decodeImageData accepts raw base64 or a data URL.
func decodeImageData(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "data:") {
		if idx := strings.Index(value, ","); idx >= 0 {
			value = value[idx+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(value); err == nil {
		return data, nil
	}
	data, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		return nil, errBadImageData
	}
	return data, nil
}
