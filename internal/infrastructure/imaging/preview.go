package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	qualityStep  = 0.08
	qualityFloor = 0.4
)

// PreviewOptions bound the inline preview embedded in a complaint record.
type PreviewOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
	MaxBytes  int
}

// GeneratePreview re-encodes an image into a base64 JPEG data URI that fits
// the byte budget. The image is scaled uniformly and never upscaled. If the
// budget cannot be met the quality is walked down in fixed steps to a floor
// and the floor-quality result is returned anyway; callers treat the preview
// as best-effort and must tolerate an error by proceeding without one.
func GeneratePreview(data []byte, opts PreviewOptions) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode preview image: %w", err)
	}

	img = scaleToBounds(img, opts.MaxWidth, opts.MaxHeight)

	quality := opts.Quality
	if quality <= 0 || quality > 1 {
		quality = 0.7
	}

	for {
		encoded, err := encodeJPEG(img, quality)
		if err != nil {
			return "", fmt.Errorf("encode preview image: %w", err)
		}

		// Base64 expands the payload by roughly 4:3; budget against the
		// inline representation, not the raw bytes.
		estimated := (len(encoded) + 2) / 3 * 4
		if estimated <= opts.MaxBytes || quality <= qualityFloor {
			return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(encoded), nil
		}

		quality -= qualityStep
		if quality < qualityFloor {
			quality = qualityFloor
		}
	}
}

func scaleToBounds(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return img
	}

	scale := 1.0
	if s := float64(maxWidth) / float64(width); s < scale {
		scale = s
	}
	if s := float64(maxHeight) / float64(height); s < scale {
		scale = s
	}
	if scale >= 1 {
		return img
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	return imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality float64) ([]byte, error) {
	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(int(quality*100)))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
