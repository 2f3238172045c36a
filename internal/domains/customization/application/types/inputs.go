package types

// AnimalInput describes one animal of the source portrait.
type AnimalInput struct {
	BreedID string
	CoatID  string
}

// OpenSessionInput seeds a wizard from the portrait being customized.
type OpenSessionInput struct {
	Credentials Credentials
	ImageID     string
	ImageData   []byte
	Prompt      string
	BreedID     string
	CoatID      string
	ThemeID     string
	StyleID     string
	FormatID    string
	TargetAge   string
	Companions  []AnimalInput
}

// SessionIdentifier addresses an open session.
type SessionIdentifier struct {
	SessionID string
}

// ChooseBreedInput either keeps the current breed or picks BreedID.
type ChooseBreedInput struct {
	SessionID   string
	KeepCurrent bool
	BreedID     string
}

// ChooseCoatInput either keeps the current coat or picks CoatID.
type ChooseCoatInput struct {
	SessionID   string
	KeepCurrent bool
	CoatID      string
}

// ChooseOutfitInput applies an outfit.
type ChooseOutfitInput struct {
	SessionID string
	OutfitID  string
}

// GenerateInput submits the previewed selection.
type GenerateInput struct {
	SessionID      string
	IdempotencyKey string
}

// GenerationIdentifier addresses a recorded generation.
type GenerationIdentifier struct {
	ID string
}

// ImageGenerationsQuery lists generations made from one source image.
type ImageGenerationsQuery struct {
	ImageID string
}

// EnrichmentInput is everything needed to describe and persist a generated portrait.
type EnrichmentInput struct {
	GenerationID string
	SessionID    string
	Credentials  Credentials
	VariationIDs []string
	ImageData    []byte
	Filename     string
	BreedName    string
}

// EnrichmentResult is the outcome of a description enrichment.
type EnrichmentResult struct {
	Description string
}
