package platform

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexibleID accepts ids encoded as JSON numbers or strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the id as text.
func (id FlexibleID) String() string { return string(id) }

// Breed is a row of GET /api/breeds.
type Breed struct {
	ID                FlexibleID `json:"id"`
	Name              string     `json:"name"`
	AnimalType        string     `json:"animal_type"`
	PersonalityTraits []string   `json:"personality_traits"`
	PopularityRank    *int       `json:"popularity_rank"`
}

// Coat is a row of GET /api/coats.
type Coat struct {
	ID          FlexibleID `json:"id"`
	Name        string     `json:"name"`
	HexColor    string     `json:"hex_color"`
	PatternType string     `json:"pattern_type"`
	Rarity      string     `json:"rarity"`
	AnimalType  string     `json:"animal_type"`
}

// Outfit is a row of GET /api/outfits.
type Outfit struct {
	ID                  FlexibleID `json:"id"`
	Name                string     `json:"name"`
	Category            string     `json:"category"`
	ClothingDescription string     `json:"clothing_description"`
	AnimalCompatibility []string   `json:"animal_compatibility"`
}

// Format is a row of GET /api/formats.
type Format struct {
	ID          FlexibleID `json:"id"`
	Name        string     `json:"name"`
	AspectRatio string     `json:"aspect_ratio"`
	Description string     `json:"description"`
}

// Theme is a row of GET /api/themes.
type Theme struct {
	ID          FlexibleID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StyleID     FlexibleID `json:"style_id"`
}

// BreedCoat is a join row of GET /api/breed-coats. The nested coat arrives under
// either "coat" or "coats" depending on how the relation was embedded.
type BreedCoat struct {
	BreedID FlexibleID `json:"breed_id"`
	CoatID  FlexibleID `json:"coat_id"`
	Coat    *Coat      `json:"coat"`
	Coats   *Coat      `json:"coats"`
}

// Nested returns the embedded coat, if any.
func (r BreedCoat) Nested() *Coat {
	if r.Coat != nil {
		return r.Coat
	}
	return r.Coats
}

// CreditsResponse is returned by GET /api/customers/credits.
type CreditsResponse struct {
	Credits struct {
		Remaining int `json:"remaining"`
	} `json:"credits"`
}

// VariationConfig describes the single-animal target.
type VariationConfig struct {
	BreedID      string `json:"breedId,omitempty"`
	CoatID       string `json:"coatId,omitempty"`
	OutfitID     string `json:"outfitId,omitempty"`
	BreedChanged bool   `json:"breedChanged"`
	CoatChanged  bool   `json:"coatChanged"`
	OutfitAdded  bool   `json:"outfitAdded"`
}

// AnimalConfig is one animal in a multi-animal request.
type AnimalConfig struct {
	Position     int    `json:"position"`
	BreedID      string `json:"breedId,omitempty"`
	CoatID       string `json:"coatId,omitempty"`
	BreedChanged bool   `json:"breedChanged"`
	CoatChanged  bool   `json:"coatChanged"`
}

// MultiAnimalConfig describes every animal of a multi-animal portrait.
type MultiAnimalConfig struct {
	Animals  []AnimalConfig `json:"animals"`
	OutfitID string         `json:"outfitId,omitempty"`
}

// GenerateVariationsRequest is the body of POST /api/customers/generate-variations.
type GenerateVariationsRequest struct {
	OriginalImageData string             `json:"originalImageData"`
	OriginalImageID   string             `json:"originalImageId"`
	OriginalPrompt    string             `json:"originalPrompt"`
	CurrentBreed      string             `json:"currentBreed"`
	CurrentCoat       string             `json:"currentCoat"`
	CurrentTheme      string             `json:"currentTheme"`
	CurrentStyle      string             `json:"currentStyle"`
	CurrentFormat     string             `json:"currentFormat"`
	TargetAge         string             `json:"targetAge"`
	VariationConfig   VariationConfig    `json:"variationConfig"`
	IsMultiAnimal     bool               `json:"isMultiAnimal"`
	MultiAnimalConfig *MultiAnimalConfig `json:"multiAnimalConfig"`
	AIDescription     string             `json:"aiDescription,omitempty"`
}

// VariationMetadata reports what the generator applied.
type VariationMetadata struct {
	Breed  string `json:"breed"`
	Coat   string `json:"coat"`
	Outfit string `json:"outfit"`
}

// Variation is one generated image. ImageData is base64, optionally as a data URL.
type Variation struct {
	ID        FlexibleID        `json:"id"`
	ImageData string            `json:"imageData"`
	Filename  string            `json:"filename"`
	Metadata  VariationMetadata `json:"metadata"`
}

// GenerateVariationsResponse is returned by POST /api/customers/generate-variations.
type GenerateVariationsResponse struct {
	Success          bool        `json:"success"`
	Variations       []Variation `json:"variations"`
	CreditsRemaining *int        `json:"creditsRemaining"`
	Error            string      `json:"error,omitempty"`
}

// ProgressMessagesRequest is the body of POST /api/customers/generate-progress-messages.
type ProgressMessagesRequest struct {
	CurrentBreed string `json:"currentBreed"`
	TargetBreed  string `json:"targetBreed"`
	TargetCoat   string `json:"targetCoat"`
	Outfit       string `json:"outfit,omitempty"`
}

// ProgressMessagesResponse carries display strings for an in-flight generation.
type ProgressMessagesResponse struct {
	Messages []string `json:"messages"`
}

// DescriptionResponse is returned by POST /api/generate-description/file.
type DescriptionResponse struct {
	Description string `json:"description"`
}

// DescriptionUpdate is the body of PATCH /api/customers/generated-images/<id>/description.
type DescriptionUpdate struct {
	Description string `json:"description"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
