package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Catalog{
		Breeds: []Breed{
			{ID: "golden", Name: "Golden Retriever", AnimalType: AnimalDog},
			{ID: "poodle", Name: "Poodle", AnimalType: AnimalDog},
			{ID: "siamese", Name: "Siamese", AnimalType: AnimalCat},
		},
		Coats: []Coat{
			{ID: "gold", Name: "Gold"},
			{ID: "black", Name: "Black"},
			{ID: "cream", Name: "Cream"},
		},
		Outfits: []Outfit{
			{ID: "santa", Name: "Santa Hat"},
			{ID: "collar", Name: "Spiked Collar", AnimalCompatibility: []AnimalType{AnimalDog}},
		},
	}
}

func testSource() SourceImage {
	return SourceImage{
		ID:      "img-1",
		Data:    []byte{0xff, 0xd8},
		Subject: AnimalAttributes{BreedID: "golden", CoatID: "gold"},
	}
}

func newTestWizard(t *testing.T) *Wizard {
	t.Helper()
	w, err := NewWizard(testSource(), testCatalog())
	require.NoError(t, err)
	return w
}

func TestNewWizard_HydratesSubject(t *testing.T) {
	w := newTestWizard(t)
	require.Equal(t, StepBreedSelection, w.Step)
	require.Equal(t, "Golden Retriever", w.Source.Subject.BreedName)
	require.Equal(t, AnimalDog, w.Source.Subject.AnimalType)
	require.Equal(t, "Gold", w.Source.Subject.CoatName)
	require.Equal(t, CoatGridPending, w.CoatOptions.Status)
}

func TestNewWizard_RequiresImage(t *testing.T) {
	_, err := NewWizard(SourceImage{ID: "x"}, testCatalog())
	require.ErrorIs(t, err, ErrMissingImageData)

	_, err = NewWizard(SourceImage{Data: []byte{1}}, testCatalog())
	require.ErrorIs(t, err, ErrMissingImageID)
}

func TestWizard_KeepEverythingCostsNothing(t *testing.T) {
	w := newTestWizard(t)

	moved, err := w.KeepCurrentBreed()
	require.NoError(t, err)
	require.True(t, moved)
	_, err = w.Next()
	require.NoError(t, err)

	w.ApplyCoatResolution("golden", []Coat{{ID: "gold", Name: "Gold"}}, true)
	require.NoError(t, w.KeepCurrentCoat())
	_, err = w.Next()
	require.NoError(t, err)

	step, err := w.SkipOutfit()
	require.NoError(t, err)
	require.Equal(t, StepPreview, step)
	require.Equal(t, 0, w.Quote().Total())
	require.NoError(t, w.ReadyToGenerate())
}

func TestWizard_BreedCoatAndOutfitCostTwo(t *testing.T) {
	w := newTestWizard(t)

	_, err := w.PickBreed("poodle")
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)

	w.ApplyCoatResolution("poodle", []Coat{{ID: "black", Name: "Black"}, {ID: "cream", Name: "Cream"}}, true)
	require.NoError(t, w.PickCoat("black"))
	_, err = w.Next()
	require.NoError(t, err)

	require.NoError(t, w.PickOutfit("santa"))
	step, err := w.Next()
	require.NoError(t, err)
	require.Equal(t, StepPreview, step)

	quote := w.Quote()
	require.Equal(t, 1, quote.Transformation)
	require.Equal(t, 1, quote.Outfit)
	require.Equal(t, 2, quote.Total())
	require.Equal(t, 3, BalanceAfter(5, quote.Total()))
}

func TestWizard_NextGuards(t *testing.T) {
	w := newTestWizard(t)

	_, err := w.Next()
	require.ErrorIs(t, err, ErrBreedChoiceRequired)

	_, err = w.KeepCurrentBreed()
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)

	_, err = w.Next()
	require.ErrorIs(t, err, ErrCoatChoiceRequired)
	require.Equal(t, StepCoatSelection, w.Step)

	require.NoError(t, w.KeepCurrentCoat())
	_, err = w.Next()
	require.NoError(t, err)

	_, err = w.Next()
	require.NoError(t, err)
	require.Equal(t, StepPreview, w.Step)

	_, err = w.Next()
	require.ErrorIs(t, err, ErrTerminalStep)
}

func TestWizard_BackFromFirstStepRejected(t *testing.T) {
	w := newTestWizard(t)
	_, err := w.Back()
	require.ErrorIs(t, err, ErrNoPreviousStep)
}

func TestWizard_ChoicesOnlyOnTheirStep(t *testing.T) {
	w := newTestWizard(t)
	require.ErrorIs(t, w.KeepCurrentCoat(), ErrWrongStep)
	require.ErrorIs(t, w.PickOutfit("santa"), ErrWrongStep)

	_, err := w.KeepCurrentBreed()
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)

	_, err = w.PickBreed("poodle")
	require.ErrorIs(t, err, ErrWrongStep)
}

func TestWizard_PickValidation(t *testing.T) {
	w := newTestWizard(t)

	_, err := w.PickBreed(" ")
	require.ErrorIs(t, err, ErrEmptyID)
	_, err = w.PickBreed("dragon")
	require.ErrorIs(t, err, ErrUnknownBreed)

	_, err = w.PickBreed("siamese")
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)

	w.ApplyCoatResolution("siamese", []Coat{{ID: "cream", Name: "Cream"}}, true)
	require.ErrorIs(t, w.PickCoat("black"), ErrCoatNotCompatible)
	require.NoError(t, w.PickCoat("cream"))
	_, err = w.Next()
	require.NoError(t, err)

	require.ErrorIs(t, w.PickOutfit("collar"), ErrOutfitNotCompatible)
	require.ErrorIs(t, w.PickOutfit("tuxedo"), ErrUnknownOutfit)
	require.NoError(t, w.PickOutfit("santa"))
	require.NoError(t, w.ClearOutfit())
	require.False(t, w.Selection.OutfitSelected())
}

func TestWizard_ReResolutionClearsIncompatibleCoat(t *testing.T) {
	w := newTestWizard(t)

	_, err := w.PickBreed("poodle")
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)
	w.ApplyCoatResolution("poodle", []Coat{{ID: "black"}, {ID: "cream"}}, true)
	require.NoError(t, w.PickCoat("black"))

	_, err = w.Back()
	require.NoError(t, err)
	moved, err := w.PickBreed("siamese")
	require.NoError(t, err)
	require.True(t, moved)
	require.Equal(t, CoatGridPending, w.CoatOptions.Status)

	_, err = w.Next()
	require.NoError(t, err)
	w.ApplyCoatResolution("siamese", []Coat{{ID: "cream"}}, true)
	require.False(t, w.Selection.Coat.IsSet())

	_, err = w.Next()
	require.ErrorIs(t, err, ErrCoatChoiceRequired)
}

func TestWizard_ReResolutionKeepsCompatibleCoat(t *testing.T) {
	w := newTestWizard(t)

	_, err := w.PickBreed("poodle")
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)
	w.ApplyCoatResolution("poodle", []Coat{{ID: "black"}, {ID: "cream"}}, true)
	require.NoError(t, w.PickCoat("cream"))

	w.ApplyCoatResolution("poodle", []Coat{{ID: "cream"}}, true)
	picked, ok := w.Selection.Coat.Picked()
	require.True(t, ok)
	require.Equal(t, "cream", picked.ID)
}

func TestWizard_StaleResolutionIgnored(t *testing.T) {
	w := newTestWizard(t)
	_, err := w.PickBreed("poodle")
	require.NoError(t, err)

	w.ApplyCoatResolution("golden", []Coat{{ID: "gold"}}, true)
	require.Equal(t, CoatGridPending, w.CoatOptions.Status)
	require.Equal(t, "poodle", w.CoatOptions.BreedID)
}

func TestWizard_ResolutionStatuses(t *testing.T) {
	w := newTestWizard(t)
	_, err := w.KeepCurrentBreed()
	require.NoError(t, err)

	w.ApplyCoatResolution("golden", nil, true)
	require.Equal(t, CoatGridEmpty, w.CoatOptions.Status)
	require.NotEmpty(t, w.CoatOptions.Placeholder())

	w.ApplyCoatResolution("golden", nil, false)
	require.Equal(t, CoatGridUnavailable, w.CoatOptions.Status)
	require.NotEmpty(t, w.CoatOptions.Placeholder())

	w.ApplyCoatResolution("golden", []Coat{{ID: "gold"}}, true)
	require.Equal(t, CoatGridReady, w.CoatOptions.Status)
	require.Empty(t, w.CoatOptions.Placeholder())
}

func TestWizard_KeepCurrentBreedTwiceDoesNotReset(t *testing.T) {
	w := newTestWizard(t)
	_, err := w.KeepCurrentBreed()
	require.NoError(t, err)
	w.ApplyCoatResolution("golden", []Coat{{ID: "gold"}}, true)

	moved, err := w.KeepCurrentBreed()
	require.NoError(t, err)
	require.False(t, moved)
	require.Equal(t, CoatGridReady, w.CoatOptions.Status)
}

func TestWizard_PickingCatDropsDogOnlyOutfit(t *testing.T) {
	w := newTestWizard(t)
	w.Selection.Outfit = &Outfit{ID: "collar", AnimalCompatibility: []AnimalType{AnimalDog}}

	_, err := w.PickBreed("siamese")
	require.NoError(t, err)
	require.Nil(t, w.Selection.Outfit)
}

func TestWizard_GenerateRequiresPreview(t *testing.T) {
	w := newTestWizard(t)
	require.ErrorIs(t, w.ReadyToGenerate(), ErrNotAtPreview)
	_, err := w.BuildRequest()
	require.ErrorIs(t, err, ErrNotAtPreview)
}
