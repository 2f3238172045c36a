package imageprep

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) (image.Image, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img, format
}

func TestNormalize_DownscalesAndEncodesJPEG(t *testing.T) {
	p := New(WithMaxDimension(100))
	out, err := p.Normalize(pngBytes(t, 400, 200))
	require.NoError(t, err)

	img, format := decode(t, out)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 100, img.Bounds().Dx())
	require.Equal(t, 50, img.Bounds().Dy())
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	out, err := New().Normalize(pngBytes(t, 40, 30))
	require.NoError(t, err)
	img, _ := decode(t, out)
	require.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
}

func TestThumbnail(t *testing.T) {
	out, err := New(WithThumbnailDimension(32)).Thumbnail(pngBytes(t, 64, 128))
	require.NoError(t, err)
	img, _ := decode(t, out)
	require.Equal(t, 16, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
}

func TestNormalize_Errors(t *testing.T) {
	_, err := New().Normalize(nil)
	require.ErrorIs(t, err, ErrEmptyImage)
	_, err = New().Normalize([]byte("not an image"))
	require.Error(t, err)
}
