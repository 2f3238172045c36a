package application

import (
	"strings"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

// view snapshots a session. Callers hold the session lock.
func (s *Service) view(session *custtypes.Session) *custtypes.SessionView {
	w := session.Wizard
	view := &custtypes.SessionView{
		ID:               session.ID,
		Step:             string(w.Step),
		Source:           w.Source.Subject,
		MultiAnimal:      w.Source.IsMultiAnimal(),
		Breed:            breedChoiceView(w),
		Coat:             coatChoiceView(w),
		Catalog:          w.Catalog,
		Quote:            s.quoteView(session),
		Generating:       session.Generating,
		ProgressMessages: append([]string(nil), session.ProgressMessages...),
		Variations:       append([]domain.GeneratedVariation(nil), session.Variations...),
		GenerationID:     session.LastGenerationID,
		Description:      session.Description,
		CoatGrid: custtypes.CoatGridView{
			BreedID:     w.CoatOptions.BreedID,
			Status:      string(w.CoatOptions.Status),
			Placeholder: w.CoatOptions.Placeholder(),
			Coats:       append([]domain.Coat(nil), w.CoatOptions.Coats...),
		},
	}
	if w.Selection.Outfit != nil {
		outfit := *w.Selection.Outfit
		view.Outfit = &outfit
	}
	if s.prompts != nil {
		view.PromptPreview = s.prompts.Preview(promptValues(w))
	}
	return view
}

func (s *Service) quoteView(session *custtypes.Session) custtypes.QuoteView {
	quote := session.Wizard.Quote()
	total := quote.Total()
	return custtypes.QuoteView{
		Transformation: quote.Transformation,
		Outfit:         quote.Outfit,
		Total:          total,
		Balance:        session.Balance,
		BalanceKnown:   session.BalanceKnown,
		BalanceAfter:   domain.BalanceAfter(session.Balance, total),
		Sufficient:     session.Balance >= total,
		PurchaseURL:    s.purchaseURL,
	}
}

func breedChoiceView(w *domain.Wizard) custtypes.ChoiceView {
	choice := w.Selection.Breed
	view := custtypes.ChoiceView{Kind: choice.Kind().String()}
	if choice.IsSet() {
		view.ID = w.TargetBreedID()
		view.Name = w.TargetBreedName()
	}
	return view
}

func coatChoiceView(w *domain.Wizard) custtypes.ChoiceView {
	choice := w.Selection.Coat
	view := custtypes.ChoiceView{Kind: choice.Kind().String()}
	if coat, ok := choice.Picked(); ok {
		view.ID = coat.ID
		view.Name = coat.Name
	} else if choice.KeepsCurrent() {
		view.ID = w.Source.Subject.CoatID
		view.Name = w.Source.Subject.CoatName
	}
	return view
}

// promptValues fills the template placeholders from the wizard's target state.
func promptValues(w *domain.Wizard) map[string]string {
	values := map[string]string{
		"animal": string(w.TargetAnimalType()),
		"breed":  w.TargetBreedName(),
	}
	if breed, ok := w.Catalog.Breed(w.TargetBreedID()); ok {
		values["personality"] = strings.Join(breed.PersonalityTraits, ", ")
	}
	coat, ok := w.Selection.Coat.Picked()
	if !ok && w.Selection.Coat.KeepsCurrent() {
		coat, ok = w.Catalog.Coat(w.Source.Subject.CoatID)
	}
	if ok {
		values["coat"] = coat.Name
		values["coat_color"] = coat.HexColor
		values["pattern"] = coat.PatternType
	}
	if outfit := w.Selection.Outfit; outfit != nil {
		values["outfit"] = outfit.Name
		values["clothing"] = outfit.ClothingDescription
	}
	if theme, ok := w.Catalog.Theme(w.Source.ThemeID); ok {
		values["theme"] = theme.Name
		values["style"] = theme.StyleID
	}
	if w.Source.StyleID != "" {
		values["style"] = w.Source.StyleID
	}
	if format, ok := w.Catalog.Format(w.Source.FormatID); ok {
		values["format"] = format.Name
	}
	return values
}
