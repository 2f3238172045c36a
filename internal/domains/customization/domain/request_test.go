package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func walkToPreview(t *testing.T, w *Wizard) {
	t.Helper()
	_, err := w.PickBreed("poodle")
	require.NoError(t, err)
	_, err = w.Next()
	require.NoError(t, err)
	w.ApplyCoatResolution("poodle", []Coat{{ID: "black"}}, true)
	require.NoError(t, w.KeepCurrentCoat())
	_, err = w.Next()
	require.NoError(t, err)
	require.NoError(t, w.PickOutfit("santa"))
	_, err = w.Next()
	require.NoError(t, err)
}

func TestBuildRequest_SingleAnimal(t *testing.T) {
	w := newTestWizard(t)
	walkToPreview(t, w)

	req, err := w.BuildRequest()
	require.NoError(t, err)
	single, ok := req.(SingleAnimalRequest)
	require.True(t, ok)
	require.Equal(t, "poodle", single.Target.BreedID)
	require.Equal(t, "gold", single.Target.CoatID)
	require.True(t, single.Target.BreedChanged)
	require.False(t, single.Target.CoatChanged)
	require.Equal(t, "santa", req.OutfitID())
	require.Equal(t, 2, req.Credits().Total())
}

func TestBuildRequest_MultiAnimalKeepsCompanions(t *testing.T) {
	source := testSource()
	source.Companions = []AnimalAttributes{{BreedID: "siamese", CoatID: "cream"}}
	w, err := NewWizard(source, testCatalog())
	require.NoError(t, err)
	walkToPreview(t, w)

	req, err := w.BuildRequest()
	require.NoError(t, err)
	multi, ok := req.(MultiAnimalRequest)
	require.True(t, ok)
	require.Len(t, multi.Animals, 2)
	require.Equal(t, "poodle", multi.Animals[0].Target.BreedID)
	require.Equal(t, 1, multi.Animals[1].Position)
	require.Equal(t, "siamese", multi.Animals[1].Target.BreedID)
	require.False(t, multi.Animals[1].Target.BreedChanged)
}

func TestNewGenerationRecord(t *testing.T) {
	w := newTestWizard(t)
	walkToPreview(t, w)
	req, err := w.BuildRequest()
	require.NoError(t, err)

	remaining := 3
	_, err = NewGenerationRecord("gen-1", "sess-1", req, nil, &remaining)
	require.ErrorIs(t, err, ErrNoVariations)
	_, err = NewGenerationRecord("", "sess-1", req, []GeneratedVariation{{ID: "v1"}}, &remaining)
	require.ErrorIs(t, err, ErrEmptyGenerationID)

	unknown, err := NewGenerationRecord("gen-0", "sess-1", req, []GeneratedVariation{{ID: "v1"}}, nil)
	require.NoError(t, err)
	require.Nil(t, unknown.CreditsRemaining)

	rec, err := NewGenerationRecord("gen-1", "sess-1", req, []GeneratedVariation{{ID: "v1"}, {ID: "v2"}}, &remaining)
	require.NoError(t, err)
	require.Equal(t, 3, *rec.CreditsRemaining)
	require.Equal(t, "img-1", rec.OriginalImageID)
	require.Equal(t, "poodle", rec.BreedID)
	require.Equal(t, "santa", rec.OutfitID)
	require.Equal(t, 2, rec.CreditsCharged)
	require.Equal(t, []string{"v1", "v2"}, rec.VariationIDs)

	rec.Describe("  A fluffy poodle  ")
	require.Equal(t, "A fluffy poodle", rec.Description)
}
