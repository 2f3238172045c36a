package domain

import "strings"

// AnimalType is the species a breed, coat or outfit applies to.
type AnimalType string

const (
	AnimalDog AnimalType = "dog"
	AnimalCat AnimalType = "cat"
)

// ParseAnimalType normalizes free-form input; unknown values map to the empty type.
func ParseAnimalType(value string) AnimalType {
	switch AnimalType(strings.ToLower(strings.TrimSpace(value))) {
	case AnimalDog:
		return AnimalDog
	case AnimalCat:
		return AnimalCat
	default:
		return ""
	}
}

// Breed is immutable reference data describing a pet breed.
type Breed struct {
	ID                string
	Name              string
	AnimalType        AnimalType
	PersonalityTraits []string
	PopularityRank    *int
}

// Coat describes a fur appearance. Validity per breed comes from the breed-coat relation.
type Coat struct {
	ID          string
	Name        string
	HexColor    string
	PatternType string
	Rarity      string
	AnimalType  AnimalType
}

// Outfit is an optional clothing overlay inserted into generation prompts.
type Outfit struct {
	ID                  string
	Name                string
	Category            string
	ClothingDescription string
	AnimalCompatibility []AnimalType
}

// CompatibleWith reports whether the outfit may be worn by the animal type.
// An outfit without a compatibility list fits every animal.
func (o Outfit) CompatibleWith(animal AnimalType) bool {
	if len(o.AnimalCompatibility) == 0 || animal == "" {
		return true
	}
	for _, candidate := range o.AnimalCompatibility {
		if candidate == animal {
			return true
		}
	}
	return false
}

// Format is a print/output format offered for portraits.
type Format struct {
	ID          string
	Name        string
	AspectRatio string
	Description string
}

// Theme groups visual scenes used when a portrait was first generated.
type Theme struct {
	ID          string
	Name        string
	Description string
	StyleID     string
}

// Catalog bundles the reference data fetched when a wizard opens.
type Catalog struct {
	Breeds  []Breed
	Coats   []Coat
	Outfits []Outfit
	Formats []Format
	Themes  []Theme
}

// Breed looks up a breed by id.
func (c Catalog) Breed(id string) (Breed, bool) {
	for _, b := range c.Breeds {
		if b.ID == id {
			return b, true
		}
	}
	return Breed{}, false
}

// Coat looks up a coat by id in the full coat list.
func (c Catalog) Coat(id string) (Coat, bool) {
	return findCoat(c.Coats, id)
}

// Outfit looks up an outfit by id.
func (c Catalog) Outfit(id string) (Outfit, bool) {
	for _, o := range c.Outfits {
		if o.ID == id {
			return o, true
		}
	}
	return Outfit{}, false
}

// Theme looks up a theme by id.
func (c Catalog) Theme(id string) (Theme, bool) {
	for _, t := range c.Themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// Format looks up a format by id.
func (c Catalog) Format(id string) (Format, bool) {
	for _, f := range c.Formats {
		if f.ID == id {
			return f, true
		}
	}
	return Format{}, false
}

func findCoat(coats []Coat, id string) (Coat, bool) {
	for _, c := range coats {
		if c.ID == id {
			return c, true
		}
	}
	return Coat{}, false
}
