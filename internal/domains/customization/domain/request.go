package domain

// AnimalTarget is the resolved breed/coat an animal should have after generation.
type AnimalTarget struct {
	BreedID      string
	BreedName    string
	CoatID       string
	CoatName     string
	BreedChanged bool
	CoatChanged  bool
}

// AnimalSlot places a target inside a multi-animal portrait.
type AnimalSlot struct {
	Position int
	Target   AnimalTarget
}

// GenerationRequest is either a SingleAnimalRequest or a MultiAnimalRequest.
type GenerationRequest interface {
	// Source returns the portrait the request customizes.
	Source() SourceImage
	// OutfitID returns the applied outfit, or "" for none.
	OutfitID() string
	// Credits is the quote the request was priced at.
	Credits() CreditQuote
	isGenerationRequest()
}

// SingleAnimalRequest customizes a portrait with one animal.
type SingleAnimalRequest struct {
	Image         SourceImage
	Target        AnimalTarget
	Outfit        *Outfit
	Quote         CreditQuote
	AIDescription string
}

func (r SingleAnimalRequest) Source() SourceImage  { return r.Image }
func (r SingleAnimalRequest) Credits() CreditQuote { return r.Quote }
func (r SingleAnimalRequest) OutfitID() string     { return outfitID(r.Outfit) }
func (SingleAnimalRequest) isGenerationRequest()   {}

// MultiAnimalRequest customizes the subject of a multi-animal portrait; companions keep their look.
type MultiAnimalRequest struct {
	Image         SourceImage
	Animals       []AnimalSlot
	Outfit        *Outfit
	Quote         CreditQuote
	AIDescription string
}

func (r MultiAnimalRequest) Source() SourceImage  { return r.Image }
func (r MultiAnimalRequest) Credits() CreditQuote { return r.Quote }
func (r MultiAnimalRequest) OutfitID() string     { return outfitID(r.Outfit) }
func (MultiAnimalRequest) isGenerationRequest()   {}

func outfitID(o *Outfit) string {
	if o == nil {
		return ""
	}
	return o.ID
}

// BuildRequest turns a ready wizard into the request variant matching its source image.
func (w *Wizard) BuildRequest() (GenerationRequest, error) {
	if err := w.ReadyToGenerate(); err != nil {
		return nil, err
	}
	target := AnimalTarget{
		BreedID:      w.TargetBreedID(),
		BreedName:    w.TargetBreedName(),
		CoatID:       w.TargetCoatID(),
		CoatName:     w.TargetCoatName(),
		BreedChanged: w.Selection.BreedChanged(),
		CoatChanged:  w.Selection.CoatChanged(),
	}
	var outfit *Outfit
	if w.Selection.Outfit != nil {
		copy := *w.Selection.Outfit
		outfit = &copy
	}
	if !w.Source.IsMultiAnimal() {
		return SingleAnimalRequest{
			Image:  w.Source,
			Target: target,
			Outfit: outfit,
			Quote:  w.Quote(),
		}, nil
	}
	slots := make([]AnimalSlot, 0, len(w.Source.Companions)+1)
	slots = append(slots, AnimalSlot{Position: 0, Target: target})
	for i, companion := range w.Source.Companions {
		slots = append(slots, AnimalSlot{
			Position: i + 1,
			Target: AnimalTarget{
				BreedID:   companion.BreedID,
				BreedName: companion.BreedName,
				CoatID:    companion.CoatID,
				CoatName:  companion.CoatName,
			},
		})
	}
	return MultiAnimalRequest{
		Image:   w.Source,
		Animals: slots,
		Outfit:  outfit,
		Quote:   w.Quote(),
	}, nil
}
