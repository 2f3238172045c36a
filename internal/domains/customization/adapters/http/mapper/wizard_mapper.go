package mapper

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

var (
	errBadImageData   = errors.New("imageData must be base64 or a base64 data URL")
	errMissingBreedID = errors.New("breedId is required unless keepCurrent is true")
	errMissingCoatID  = errors.New("coatId is required unless keepCurrent is true")
)

// Animal is one animal of the source portrait.
type Animal struct {
	BreedID string `json:"breedId"`
	CoatID  string `json:"coatId"`
}

// OpenSession is the payload that opens a wizard for an existing portrait.
type OpenSession struct {
	ImageID    string   `json:"imageId" binding:"required"`
	ImageData  string   `json:"imageData" binding:"required"`
	Prompt     string   `json:"prompt"`
	BreedID    string   `json:"breedId"`
	CoatID     string   `json:"coatId"`
	ThemeID    string   `json:"themeId"`
	StyleID    string   `json:"styleId"`
	FormatID   string   `json:"formatId"`
	TargetAge  string   `json:"targetAge"`
	Companions []Animal `json:"companions" binding:"omitempty,dive"`
}

// BreedChoice keeps the current breed or picks a new one.
type BreedChoice struct {
	KeepCurrent bool   `json:"keepCurrent"`
	BreedID     string `json:"breedId"`
}

// CoatChoice keeps the current coat or picks a new one.
type CoatChoice struct {
	KeepCurrent bool   `json:"keepCurrent"`
	CoatID      string `json:"coatId"`
}

// OutfitChoice applies an outfit.
type OutfitChoice struct {
	OutfitID string `json:"outfitId" binding:"required"`
}

// ToOpenSessionInput maps the payload plus the caller's bearer token.
func ToOpenSessionInput(payload OpenSession, bearer string) (custtypes.OpenSessionInput, error) {
	data, err := DecodeImageData(payload.ImageData)
	if err != nil {
		return custtypes.OpenSessionInput{}, err
	}
	input := custtypes.OpenSessionInput{
		Credentials: custtypes.Credentials{Bearer: bearer},
		ImageID:     strings.TrimSpace(payload.ImageID),
		ImageData:   data,
		Prompt:      payload.Prompt,
		BreedID:     strings.TrimSpace(payload.BreedID),
		CoatID:      strings.TrimSpace(payload.CoatID),
		ThemeID:     strings.TrimSpace(payload.ThemeID),
		StyleID:     strings.TrimSpace(payload.StyleID),
		FormatID:    strings.TrimSpace(payload.FormatID),
		TargetAge:   strings.TrimSpace(payload.TargetAge),
	}
	for _, a := range payload.Companions {
		input.Companions = append(input.Companions, custtypes.AnimalInput{
			BreedID: strings.TrimSpace(a.BreedID),
			CoatID:  strings.TrimSpace(a.CoatID),
		})
	}
	return input, nil
}

// ToChooseBreedInput validates that exactly one of keepCurrent or breedId is meaningful.
func ToChooseBreedInput(sessionID string, payload BreedChoice) (custtypes.ChooseBreedInput, error) {
	id := strings.TrimSpace(payload.BreedID)
	if !payload.KeepCurrent && id == "" {
		return custtypes.ChooseBreedInput{}, errMissingBreedID
	}
	return custtypes.ChooseBreedInput{SessionID: sessionID, KeepCurrent: payload.KeepCurrent, BreedID: id}, nil
}

// ToChooseCoatInput validates that exactly one of keepCurrent or coatId is meaningful.
func ToChooseCoatInput(sessionID string, payload CoatChoice) (custtypes.ChooseCoatInput, error) {
	id := strings.TrimSpace(payload.CoatID)
	if !payload.KeepCurrent && id == "" {
		return custtypes.ChooseCoatInput{}, errMissingCoatID
	}
	return custtypes.ChooseCoatInput{SessionID: sessionID, KeepCurrent: payload.KeepCurrent, CoatID: id}, nil
}

// DecodeImageData accepts raw base64 or a data URL.
func DecodeImageData(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		idx := strings.Index(value, ",")
		if idx < 0 {
			return nil, errBadImageData
		}
		value = value[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(value); err != nil {
			return nil, errBadImageData
		}
	}
	if len(data) == 0 {
		return nil, errBadImageData
	}
	return data, nil
}

// Choice renders a keep/pick decision.
type Choice struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Breed is the transport form of a catalog breed.
type Breed struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	AnimalType        string   `json:"animalType,omitempty"`
	PersonalityTraits []string `json:"personalityTraits,omitempty"`
	PopularityRank    *int     `json:"popularityRank,omitempty"`
}

// Coat is the transport form of a coat.
type Coat struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HexColor    string `json:"hexColor,omitempty"`
	PatternType string `json:"patternType,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
	AnimalType  string `json:"animalType,omitempty"`
}

// Outfit is the transport form of an outfit.
type Outfit struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Category            string   `json:"category,omitempty"`
	ClothingDescription string   `json:"clothingDescription,omitempty"`
	AnimalCompatibility []string `json:"animalCompatibility,omitempty"`
}

// Format is the transport form of a print format.
type Format struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Description string `json:"description,omitempty"`
}

// Theme is the transport form of a theme.
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StyleID     string `json:"styleId,omitempty"`
}

// Catalog bundles reference data for the wizard screens.
type Catalog struct {
	Breeds  []Breed  `json:"breeds"`
	Coats   []Coat   `json:"coats"`
	Outfits []Outfit `json:"outfits"`
	Formats []Format `json:"formats"`
	Themes  []Theme  `json:"themes"`
}

// CoatGrid is the coat-selection grid state.
type CoatGrid struct {
	BreedID     string `json:"breedId,omitempty"`
	Status      string `json:"status"`
	Placeholder string `json:"placeholder,omitempty"`
	Coats       []Coat `json:"coats"`
}

// Quote is the credit cost of the current selection.
type Quote struct {
	Transformation int    `json:"transformation"`
	Outfit         int    `json:"outfit"`
	Total          int    `json:"total"`
	Balance        *int   `json:"balance,omitempty"`
	BalanceAfter   *int   `json:"balanceAfter,omitempty"`
	Sufficient     bool   `json:"sufficient"`
	PurchaseURL    string `json:"purchaseUrl,omitempty"`
}

// SourceAnimal is the animal as it appears in the source portrait.
type SourceAnimal struct {
	AnimalType string `json:"animalType,omitempty"`
	BreedID    string `json:"breedId,omitempty"`
	BreedName  string `json:"breedName,omitempty"`
	CoatID     string `json:"coatId,omitempty"`
	CoatName   string `json:"coatName,omitempty"`
}

// Variation is one generated image.
type Variation struct {
	ID          string            `json:"id"`
	ImageData   string            `json:"imageData,omitempty"`
	Filename    string            `json:"filename,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Session is the wizard state returned by every wizard endpoint.
type Session struct {
	ID               string       `json:"id"`
	Step             string       `json:"step"`
	Source           SourceAnimal `json:"source"`
	MultiAnimal      bool         `json:"multiAnimal"`
	Breed            Choice       `json:"breed"`
	Coat             Choice       `json:"coat"`
	Outfit           *Outfit      `json:"outfit,omitempty"`
	CoatGrid         CoatGrid     `json:"coatGrid"`
	Catalog          Catalog      `json:"catalog"`
	Quote            Quote        `json:"quote"`
	Generating       bool         `json:"generating"`
	ProgressMessages []string     `json:"progressMessages,omitempty"`
	Variations       []Variation  `json:"variations,omitempty"`
	GenerationID     string       `json:"generationId,omitempty"`
	Description      string       `json:"description,omitempty"`
	PromptPreview    string       `json:"promptPreview,omitempty"`
}

// Generation is a recorded generation.
type Generation struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"sessionId"`
	OriginalImageID  string    `json:"originalImageId"`
	BreedID          string    `json:"breedId,omitempty"`
	CoatID           string    `json:"coatId,omitempty"`
	OutfitID         string    `json:"outfitId,omitempty"`
	MultiAnimal      bool      `json:"multiAnimal"`
	CreditsCharged   int       `json:"creditsCharged"`
	CreditsRemaining *int      `json:"creditsRemaining,omitempty"`
	VariationIDs     []string  `json:"variationIds"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

// GenerateResponse is returned by the generate endpoint.
type GenerateResponse struct {
	Session    *Session    `json:"session"`
	Generation *Generation `json:"generation,omitempty"`
	Replayed   bool        `json:"replayed"`
}

// FromSessionView maps a session snapshot to its transport form.
func FromSessionView(view *custtypes.SessionView) *Session {
	if view == nil {
		return nil
	}
	out := &Session{
		ID:               view.ID,
		Step:             view.Step,
		Source:           fromAnimal(view.Source),
		MultiAnimal:      view.MultiAnimal,
		Breed:            Choice(view.Breed),
		Coat:             Choice(view.Coat),
		CoatGrid:         fromCoatGrid(view.CoatGrid),
		Catalog:          fromCatalog(view.Catalog),
		Quote:            FromQuoteView(view.Quote),
		Generating:       view.Generating,
		ProgressMessages: view.ProgressMessages,
		GenerationID:     view.GenerationID,
		Description:      view.Description,
		PromptPreview:    view.PromptPreview,
	}
	if view.Outfit != nil {
		outfit := fromOutfit(*view.Outfit)
		out.Outfit = &outfit
	}
	for _, v := range view.Variations {
		out.Variations = append(out.Variations, fromVariation(v))
	}
	return out
}

// FromQuoteView maps a quote. Balance fields are omitted while the balance is unknown.
func FromQuoteView(q custtypes.QuoteView) Quote {
	out := Quote{
		Transformation: q.Transformation,
		Outfit:         q.Outfit,
		Total:          q.Total,
		Sufficient:     q.Sufficient,
		PurchaseURL:    q.PurchaseURL,
	}
	if q.BalanceKnown {
		balance, after := q.Balance, q.BalanceAfter
		out.Balance = &balance
		out.BalanceAfter = &after
	}
	return out
}

// FromGeneration maps a recorded generation.
func FromGeneration(p *custtypes.GenerationProjection) *Generation {
	if p == nil || p.Entity == nil {
		return nil
	}
	rec := p.Entity
	return &Generation{
		ID:               rec.ID,
		SessionID:        rec.SessionID,
		OriginalImageID:  rec.OriginalImageID,
		BreedID:          rec.BreedID,
		CoatID:           rec.CoatID,
		OutfitID:         rec.OutfitID,
		MultiAnimal:      rec.MultiAnimal,
		CreditsCharged:   rec.CreditsCharged,
		CreditsRemaining: rec.CreditsRemaining,
		VariationIDs:     append([]string{}, rec.VariationIDs...),
		Description:      rec.Description,
		CreatedAt:        p.Metadata.CreatedAt,
		UpdatedAt:        p.Metadata.UpdatedAt,
	}
}

// FromGenerationList maps a list of generations.
func FromGenerationList(list []*custtypes.GenerationProjection) []Generation {
	out := make([]Generation, 0, len(list))
	for _, p := range list {
		if g := FromGeneration(p); g != nil {
			out = append(out, *g)
		}
	}
	return out
}

// FromGenerateResult maps a generation submission result.
func FromGenerateResult(result *custtypes.GenerateResult) GenerateResponse {
	if result == nil {
		return GenerateResponse{}
	}
	return GenerateResponse{
		Session:    FromSessionView(result.Session),
		Generation: FromGeneration(result.Generation),
		Replayed:   result.Replayed,
	}
}

func fromAnimal(a domain.AnimalAttributes) SourceAnimal {
	return SourceAnimal{
		AnimalType: string(a.AnimalType),
		BreedID:    a.BreedID,
		BreedName:  a.BreedName,
		CoatID:     a.CoatID,
		CoatName:   a.CoatName,
	}
}

func fromCoatGrid(g custtypes.CoatGridView) CoatGrid {
	return CoatGrid{
		BreedID:     g.BreedID,
		Status:      g.Status,
		Placeholder: g.Placeholder,
		Coats:       fromCoats(g.Coats),
	}
}

func fromCatalog(c domain.Catalog) Catalog {
	out := Catalog{
		Breeds:  make([]Breed, 0, len(c.Breeds)),
		Coats:   fromCoats(c.Coats),
		Outfits: make([]Outfit, 0, len(c.Outfits)),
		Formats: make([]Format, 0, len(c.Formats)),
		Themes:  make([]Theme, 0, len(c.Themes)),
	}
	for _, b := range c.Breeds {
		out.Breeds = append(out.Breeds, Breed{
			ID:                b.ID,
			Name:              b.Name,
			AnimalType:        string(b.AnimalType),
			PersonalityTraits: b.PersonalityTraits,
			PopularityRank:    b.PopularityRank,
		})
	}
	for _, o := range c.Outfits {
		out.Outfits = append(out.Outfits, fromOutfit(o))
	}
	for _, f := range c.Formats {
		out.Formats = append(out.Formats, Format(f))
	}
	for _, t := range c.Themes {
		out.Themes = append(out.Themes, Theme(t))
	}
	return out
}

func fromCoats(coats []domain.Coat) []Coat {
	out := make([]Coat, 0, len(coats))
	for _, c := range coats {
		out = append(out, Coat{
			ID:          c.ID,
			Name:        c.Name,
			HexColor:    c.HexColor,
			PatternType: c.PatternType,
			Rarity:      c.Rarity,
			AnimalType:  string(c.AnimalType),
		})
	}
	return out
}

func fromOutfit(o domain.Outfit) Outfit {
	out := Outfit{
		ID:                  o.ID,
		Name:                o.Name,
		Category:            o.Category,
		ClothingDescription: o.ClothingDescription,
	}
	for _, a := range o.AnimalCompatibility {
		out.AnimalCompatibility = append(out.AnimalCompatibility, string(a))
	}
	return out
}

func fromVariation(v domain.GeneratedVariation) Variation {
	out := Variation{ID: v.ID, Filename: v.Filename, Description: v.Description}
	if len(v.ImageData) > 0 {
		out.ImageData = base64.StdEncoding.EncodeToString(v.ImageData)
	}
	meta := map[string]string{}
	if v.Metadata.Breed != "" {
		meta["breed"] = v.Metadata.Breed
	}
	if v.Metadata.Coat != "" {
		meta["coat"] = v.Metadata.Coat
	}
	if v.Metadata.Outfit != "" {
		meta["outfit"] = v.Metadata.Outfit
	}
	if len(meta) > 0 {
		out.Metadata = meta
	}
	return out
}
