package domain

import (
	"errors"
	"strings"
)

// Step is a wizard state. Steps are linear and preview is terminal.
type Step string

const (
	StepBreedSelection  Step = "breed-selection"
	StepCoatSelection   Step = "coat-selection"
	StepOutfitSelection Step = "outfit-selection"
	StepPreview         Step = "preview"
)

var stepOrder = []Step{StepBreedSelection, StepCoatSelection, StepOutfitSelection, StepPreview}

func (s Step) index() int {
	for i, candidate := range stepOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// CoatGridStatus describes what the coat-selection step can render.
type CoatGridStatus string

const (
	CoatGridPending     CoatGridStatus = "pending"
	CoatGridReady       CoatGridStatus = "ready"
	CoatGridEmpty       CoatGridStatus = "empty"
	CoatGridUnavailable CoatGridStatus = "unavailable"
)

// CoatOptions is the resolved compatible-coat set for the target breed.
type CoatOptions struct {
	BreedID string
	Coats   []Coat
	Status  CoatGridStatus
}

// Placeholder returns the message shown instead of an empty coat grid.
func (o CoatOptions) Placeholder() string {
	switch o.Status {
	case CoatGridPending:
		return "Loading coats..."
	case CoatGridEmpty:
		return "No coats are available for this breed yet."
	case CoatGridUnavailable:
		return "Coats could not be loaded right now. You can keep the current coat or try again."
	default:
		return ""
	}
}

var (
	ErrWrongStep           = errors.New("choice is not editable at the current step")
	ErrBreedChoiceRequired = errors.New("keep the current breed or pick a new one before continuing")
	ErrCoatChoiceRequired  = errors.New("keep the current coat or pick a new one before continuing")
	ErrTerminalStep        = errors.New("preview is the final step")
	ErrNoPreviousStep      = errors.New("breed selection is the first step")
	ErrNotAtPreview        = errors.New("generation is only available from the preview step")
	ErrEmptyID             = errors.New("identifier is required")
	ErrUnknownBreed        = errors.New("breed is not in the catalog")
	ErrCoatNotCompatible   = errors.New("coat is not available for the selected breed")
	ErrUnknownOutfit       = errors.New("outfit is not in the catalog")
	ErrOutfitNotCompatible = errors.New("outfit does not fit the selected animal")
)

// Wizard is the customization state machine for one open session.
type Wizard struct {
	Source      SourceImage
	Catalog     Catalog
	Step        Step
	Selection   Selection
	CoatOptions CoatOptions
}

// NewWizard starts a wizard at breed selection with nothing chosen.
func NewWizard(source SourceImage, catalog Catalog) (*Wizard, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	source.hydrate(catalog)
	return &Wizard{
		Source:      source,
		Catalog:     catalog,
		Step:        StepBreedSelection,
		CoatOptions: CoatOptions{Status: CoatGridPending},
	}, nil
}

// TargetBreedID is the breed the generated portrait will show, or "" when undecided.
func (w *Wizard) TargetBreedID() string {
	if w.Selection.Breed.KeepsCurrent() {
		return w.Source.Subject.BreedID
	}
	if breed, ok := w.Selection.Breed.Picked(); ok {
		return breed.ID
	}
	return ""
}

// TargetBreedName is the display name of the target breed.
func (w *Wizard) TargetBreedName() string {
	if breed, ok := w.Selection.Breed.Picked(); ok {
		return breed.Name
	}
	if w.Selection.Breed.KeepsCurrent() {
		return w.Source.Subject.BreedName
	}
	return ""
}

// TargetCoatID is the coat the generated portrait will show, or "" when undecided.
func (w *Wizard) TargetCoatID() string {
	if w.Selection.Coat.KeepsCurrent() {
		return w.Source.Subject.CoatID
	}
	if coat, ok := w.Selection.Coat.Picked(); ok {
		return coat.ID
	}
	return ""
}

// TargetCoatName is the display name of the target coat.
func (w *Wizard) TargetCoatName() string {
	if coat, ok := w.Selection.Coat.Picked(); ok {
		return coat.Name
	}
	if w.Selection.Coat.KeepsCurrent() {
		return w.Source.Subject.CoatName
	}
	return ""
}

// TargetAnimalType is the species of the target breed, falling back to the source animal.
func (w *Wizard) TargetAnimalType() AnimalType {
	if breed, ok := w.Selection.Breed.Picked(); ok && breed.AnimalType != "" {
		return breed.AnimalType
	}
	return w.Source.Subject.AnimalType
}

// KeepCurrentBreed retains the source breed. It reports whether the target breed changed.
func (w *Wizard) KeepCurrentBreed() (bool, error) {
	if w.Step != StepBreedSelection {
		return false, ErrWrongStep
	}
	before := w.TargetBreedID()
	w.Selection.Breed = KeepCurrent[Breed]()
	return w.breedTargetMoved(before), nil
}

// PickBreed selects a new breed from the catalog. It reports whether the target breed changed.
func (w *Wizard) PickBreed(id string) (bool, error) {
	if w.Step != StepBreedSelection {
		return false, ErrWrongStep
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyID
	}
	breed, ok := w.Catalog.Breed(id)
	if !ok {
		return false, ErrUnknownBreed
	}
	before := w.TargetBreedID()
	w.Selection.Breed = PickNew(breed)
	if w.Selection.Outfit != nil && !w.Selection.Outfit.CompatibleWith(w.TargetAnimalType()) {
		w.Selection.Outfit = nil
	}
	return w.breedTargetMoved(before), nil
}

func (w *Wizard) breedTargetMoved(before string) bool {
	after := w.TargetBreedID()
	if after != before || w.CoatOptions.BreedID != after {
		w.CoatOptions = CoatOptions{BreedID: after, Status: CoatGridPending}
		return true
	}
	return false
}

// KeepCurrentCoat retains the source coat.
func (w *Wizard) KeepCurrentCoat() error {
	if w.Step != StepCoatSelection {
		return ErrWrongStep
	}
	w.Selection.Coat = KeepCurrent[Coat]()
	return nil
}

// PickCoat selects a coat from the resolved compatible set.
func (w *Wizard) PickCoat(id string) error {
	if w.Step != StepCoatSelection {
		return ErrWrongStep
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	coat, ok := findCoat(w.CoatOptions.Coats, id)
	if !ok {
		return ErrCoatNotCompatible
	}
	w.Selection.Coat = PickNew(coat)
	return nil
}

// PickOutfit applies an outfit compatible with the target animal.
func (w *Wizard) PickOutfit(id string) error {
	if w.Step != StepOutfitSelection {
		return ErrWrongStep
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	outfit, ok := w.Catalog.Outfit(id)
	if !ok {
		return ErrUnknownOutfit
	}
	if !outfit.CompatibleWith(w.TargetAnimalType()) {
		return ErrOutfitNotCompatible
	}
	w.Selection.Outfit = &outfit
	return nil
}

// ClearOutfit removes the outfit; absence means "no outfit".
func (w *Wizard) ClearOutfit() error {
	if w.Step != StepOutfitSelection {
		return ErrWrongStep
	}
	w.Selection.Outfit = nil
	return nil
}

// Next advances one step when the current step's guard holds.
func (w *Wizard) Next() (Step, error) {
	switch w.Step {
	case StepBreedSelection:
		if !w.Selection.Breed.IsSet() {
			return w.Step, ErrBreedChoiceRequired
		}
	case StepCoatSelection:
		if !w.Selection.Coat.IsSet() {
			return w.Step, ErrCoatChoiceRequired
		}
	case StepPreview:
		return w.Step, ErrTerminalStep
	}
	w.Step = stepOrder[w.Step.index()+1]
	return w.Step, nil
}

// SkipOutfit leaves outfit selection without an outfit and moves to preview.
func (w *Wizard) SkipOutfit() (Step, error) {
	if w.Step != StepOutfitSelection {
		return w.Step, ErrWrongStep
	}
	w.Selection.Outfit = nil
	w.Step = StepPreview
	return w.Step, nil
}

// Back moves one step toward breed selection.
func (w *Wizard) Back() (Step, error) {
	idx := w.Step.index()
	if idx <= 0 {
		return w.Step, ErrNoPreviousStep
	}
	w.Step = stepOrder[idx-1]
	return w.Step, nil
}

// ApplyCoatResolution installs the compatible-coat set for breedID. Results for a
// breed that is no longer the target are ignored. A picked coat outside the new set
// is cleared; resolved=false marks the grid unavailable.
func (w *Wizard) ApplyCoatResolution(breedID string, coats []Coat, resolved bool) {
	if breedID != w.TargetBreedID() {
		return
	}
	options := CoatOptions{BreedID: breedID, Coats: append([]Coat(nil), coats...)}
	switch {
	case !resolved:
		options.Status = CoatGridUnavailable
	case len(coats) == 0:
		options.Status = CoatGridEmpty
	default:
		options.Status = CoatGridReady
	}
	w.CoatOptions = options
	if picked, ok := w.Selection.Coat.Picked(); ok {
		if _, member := findCoat(options.Coats, picked.ID); !member {
			w.Selection.Coat = Unset[Coat]()
		}
	}
}

// Quote is the current credit cost.
func (w *Wizard) Quote() CreditQuote {
	return w.Selection.Quote()
}

// ReadyToGenerate checks the wizard reached preview with complete choices.
func (w *Wizard) ReadyToGenerate() error {
	if w.Step != StepPreview {
		return ErrNotAtPreview
	}
	if !w.Selection.Breed.IsSet() {
		return ErrBreedChoiceRequired
	}
	if !w.Selection.Coat.IsSet() {
		return ErrCoatChoiceRequired
	}
	return nil
}
