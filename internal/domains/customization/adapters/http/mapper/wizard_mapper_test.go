package mapper

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	custtypes "github.com/Apurer/portrait-customizer/internal/domains/customization/application/types"
	"github.com/Apurer/portrait-customizer/internal/domains/customization/domain"
)

func TestDecodeImageData(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff}
	for _, value := range []string{
		base64.StdEncoding.EncodeToString(raw),
		base64.RawStdEncoding.EncodeToString(raw),
		"data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw),
	} {
		data, err := DecodeImageData(value)
		require.NoError(t, err)
		require.Equal(t, raw, data)
	}

	for _, value := range []string{"", "data:image/jpeg;base64", "%%%"} {
		_, err := DecodeImageData(value)
		require.ErrorIs(t, err, errBadImageData)
	}
}

func TestToOpenSessionInput_TrimsAndCarriesCompanions(t *testing.T) {
	input, err := ToOpenSessionInput(OpenSession{
		ImageID:    " img-1 ",
		ImageData:  base64.StdEncoding.EncodeToString([]byte("x")),
		BreedID:    "golden ",
		Companions: []Animal{{BreedID: " siamese", CoatID: "cream"}},
	}, "tok")
	require.NoError(t, err)
	require.Equal(t, "img-1", input.ImageID)
	require.Equal(t, "golden", input.BreedID)
	require.Equal(t, "tok", input.Credentials.Bearer)
	require.Equal(t, []custtypes.AnimalInput{{BreedID: "siamese", CoatID: "cream"}}, input.Companions)
}

func TestFromQuoteView_HidesUnknownBalance(t *testing.T) {
	q := FromQuoteView(custtypes.QuoteView{Transformation: 1, Outfit: 1, Total: 2})
	require.Nil(t, q.Balance)
	require.Nil(t, q.BalanceAfter)

	q = FromQuoteView(custtypes.QuoteView{Total: 2, Balance: 1, BalanceKnown: true, BalanceAfter: 0})
	require.NotNil(t, q.Balance)
	require.Equal(t, 1, *q.Balance)
	require.Equal(t, 0, *q.BalanceAfter)
}

func TestFromSessionView_EncodesVariations(t *testing.T) {
	view := &custtypes.SessionView{
		ID:    "s-1",
		Step:  string(domain.StepPreview),
		Breed: custtypes.ChoiceView{Kind: "pick-new", ID: "poodle", Name: "Poodle"},
		Variations: []domain.GeneratedVariation{
			{ID: "v-1", ImageData: []byte("img"), Metadata: domain.VariationMetadata{Breed: "Poodle"}},
		},
		Outfit: &domain.Outfit{ID: "santa", Name: "Santa Suit", AnimalCompatibility: []domain.AnimalType{domain.AnimalDog}},
	}
	out := FromSessionView(view)
	require.Equal(t, "preview", out.Step)
	require.Equal(t, "Poodle", out.Breed.Name)
	require.Equal(t, []string{"dog"}, out.Outfit.AnimalCompatibility)
	require.Len(t, out.Variations, 1)
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), out.Variations[0].ImageData)
	require.Equal(t, map[string]string{"breed": "Poodle"}, out.Variations[0].Metadata)
	require.NotNil(t, out.Catalog.Breeds)
	require.Nil(t, FromSessionView(nil))
}
