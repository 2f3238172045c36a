package domain

// Selection is the per-session, never-persisted set of wizard choices.
type Selection struct {
	Breed  Choice[Breed]
	Coat   Choice[Coat]
	Outfit *Outfit
}

// BreedChanged is true when a new breed was picked.
func (s Selection) BreedChanged() bool {
	return s.Breed.Changed()
}

// CoatChanged is true when a new coat was picked.
func (s Selection) CoatChanged() bool {
	return s.Coat.Changed()
}

// OutfitSelected is true when an outfit will be applied.
func (s Selection) OutfitSelected() bool {
	return s.Outfit != nil
}

// Quote derives the credit cost of the selection.
func (s Selection) Quote() CreditQuote {
	return QuoteCredits(s.BreedChanged(), s.CoatChanged(), s.OutfitSelected())
}
