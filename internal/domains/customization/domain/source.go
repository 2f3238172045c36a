package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingImageID   = errors.New("source image id is required")
	ErrMissingImageData = errors.New("source image data is required")
)

// AnimalAttributes is the breed/coat pair an animal currently has in the source image.
type AnimalAttributes struct {
	AnimalType AnimalType
	BreedID    string
	BreedName  string
	CoatID     string
	CoatName   string
}

// SourceImage is the portrait being customized, as it looked when the wizard opened.
// Companions are additional animals in a multi-animal portrait; they keep their attributes.
type SourceImage struct {
	ID         string
	Data       []byte
	Prompt     string
	Subject    AnimalAttributes
	Companions []AnimalAttributes
	ThemeID    string
	StyleID    string
	FormatID   string
	TargetAge  string
}

// Validate enforces the minimum needed to submit a generation later.
func (s SourceImage) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrMissingImageID
	}
	if len(s.Data) == 0 {
		return ErrMissingImageData
	}
	return nil
}

// IsMultiAnimal reports whether the portrait contains more than one animal.
func (s SourceImage) IsMultiAnimal() bool {
	return len(s.Companions) > 0
}

// hydrate fills display names from the catalog where the caller only supplied ids.
func (s *SourceImage) hydrate(catalog Catalog) {
	hydrateAnimal(&s.Subject, catalog)
	for i := range s.Companions {
		hydrateAnimal(&s.Companions[i], catalog)
	}
}

func hydrateAnimal(a *AnimalAttributes, catalog Catalog) {
	if b, ok := catalog.Breed(a.BreedID); ok {
		if a.BreedName == "" {
			a.BreedName = b.Name
		}
		if a.AnimalType == "" {
			a.AnimalType = b.AnimalType
		}
	}
	if c, ok := catalog.Coat(a.CoatID); ok && a.CoatName == "" {
		a.CoatName = c.Name
	}
}
