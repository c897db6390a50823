package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	// Noisy fill so the JPEG does not compress to nothing
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7 % 256), uint8(y * 13 % 256), uint8((x + y) % 256), 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func decodePreview(t *testing.T, preview string) image.Image {
	t.Helper()

	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(preview, prefix))

	raw, err := base64.StdEncoding.DecodeString(preview[len(prefix):])
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestGeneratePreviewScalesDownPreservingAspect(t *testing.T) {
	data := encodeTestJPEG(t, 2000, 1000)

	preview, err := GeneratePreview(data, PreviewOptions{
		MaxWidth:  320,
		MaxHeight: 320,
		Quality:   0.7,
		MaxBytes:  1 << 20,
	})
	require.NoError(t, err)

	img := decodePreview(t, preview)
	bounds := img.Bounds()
	assert.Equal(t, 320, bounds.Dx())
	assert.Equal(t, 160, bounds.Dy())
}

func TestGeneratePreviewNeverUpscales(t *testing.T) {
	data := encodeTestJPEG(t, 100, 80)

	preview, err := GeneratePreview(data, PreviewOptions{
		MaxWidth:  320,
		MaxHeight: 320,
		Quality:   0.7,
		MaxBytes:  1 << 20,
	})
	require.NoError(t, err)

	img := decodePreview(t, preview)
	bounds := img.Bounds()
	assert.Equal(t, 100, bounds.Dx())
	assert.Equal(t, 80, bounds.Dy())
}

func TestGeneratePreviewRespectsByteBudget(t *testing.T) {
	data := encodeTestJPEG(t, 1200, 900)

	budget := 48 * 1024
	preview, err := GeneratePreview(data, PreviewOptions{
		MaxWidth:  320,
		MaxHeight: 320,
		Quality:   0.9,
		MaxBytes:  budget,
	})
	require.NoError(t, err)

	// A 320-wide photo comfortably fits 48KB once quality drops, so the
	// inline representation must be within budget here.
	assert.LessOrEqual(t, len(preview), budget+len("data:image/jpeg;base64,"))
}

func TestGeneratePreviewTerminatesAtQualityFloor(t *testing.T) {
	data := encodeTestJPEG(t, 1600, 1600)

	// Impossible budget: the loop must still terminate and return a
	// floor-quality result rather than fail.
	preview, err := GeneratePreview(data, PreviewOptions{
		MaxWidth:  800,
		MaxHeight: 800,
		Quality:   0.9,
		MaxBytes:  10,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(preview, "data:image/jpeg;base64,"))
}

func TestGeneratePreviewRejectsGarbage(t *testing.T) {
	_, err := GeneratePreview([]byte("not an image"), PreviewOptions{
		MaxWidth:  320,
		MaxHeight: 320,
		Quality:   0.7,
		MaxBytes:  1 << 20,
	})
	assert.Error(t, err)
}
