// Package tesseract recognizes card text with the Tesseract OCR engine.
package tesseract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	"github.com/cardscan/backend/internal/domain"
	"github.com/cardscan/backend/internal/infrastructure/ocr"
)

// Config holds configuration for the recognizer
type Config struct {
	Language  string
	MinHeight int
	Logger    *slog.Logger
}

// Recognizer implements domain.TextRecognizer on top of gosseract.
// A new engine client is created for every call since clients are not safe
// for concurrent use.
type Recognizer struct {
	language  string
	minHeight int
	logger    *slog.Logger
}

// NewRecognizer creates a Tesseract backed recognizer
func NewRecognizer(cfg Config) *Recognizer {
	language := cfg.Language
	if language == "" {
		language = "eng"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Recognizer{
		language:  language,
		minHeight: cfg.MinHeight,
		logger:    logger,
	}
}

// Recognize returns the text lines found in image
func (r *Recognizer) Recognize(ctx context.Context, image []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := ocr.Prepare(image, r.minHeight)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("%w: set language: %v", domain.ErrOCRFailure, err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", domain.ErrOCRFailure, err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}

	lines := ocr.SplitLines(text)
	r.logger.Debug("[OCR] recognized text", slog.Int("lines", len(lines)))
	return lines, nil
}
