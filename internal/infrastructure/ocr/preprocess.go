// Package ocr prepares card images for text recognition and normalizes
// the recognized text.
package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/cardscan/backend/internal/domain"
)

// DefaultMinHeight is the height small images are upscaled to before OCR
const DefaultMinHeight = 1200

// Prepare decodes an uploaded image, converts it to an upscaled high-contrast
// grayscale PNG and returns the encoded bytes.
func Prepare(data []byte, minHeight int) ([]byte, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyUpload
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	processed := enhance(img, minHeight)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", domain.ErrOCRFailure, err)
	}
	return buf.Bytes(), nil
}

func enhance(img image.Image, minHeight int) *image.NRGBA {
	if minHeight <= 0 {
		minHeight = DefaultMinHeight
	}

	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minHeight {
		gray = imaging.Resize(gray, 0, minHeight, imaging.Lanczos)
	}
	gray = imaging.AdjustContrast(gray, 15)
	return imaging.Sharpen(gray, 0.7)
}
