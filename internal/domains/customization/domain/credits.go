package domain

const (
	// TransformationCredits is charged once when the breed, the coat, or both change.
	TransformationCredits = 1
	// OutfitCredits is charged when an outfit is applied.
	OutfitCredits = 1
)

// CreditQuote is the derived cost of a selection. It is never stored.
type CreditQuote struct {
	Transformation int
	Outfit         int
}

// Total is the number of credits the generation will debit.
func (q CreditQuote) Total() int {
	return q.Transformation + q.Outfit
}

// QuoteCredits computes the cost from the selection delta.
func QuoteCredits(breedChanged, coatChanged, outfitSelected bool) CreditQuote {
	var quote CreditQuote
	if breedChanged || coatChanged {
		quote.Transformation = TransformationCredits
	}
	if outfitSelected {
		quote.Outfit = OutfitCredits
	}
	return quote
}

// BalanceAfter is the display-only remaining balance, clamped at zero.
func BalanceAfter(balance, required int) int {
	if remaining := balance - required; remaining > 0 {
		return remaining
	}
	return 0
}
