package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/cardscan/backend/internal/domain"
)

// DefaultSetNumberPattern matches printed set numbers like "4/102" or "036/119"
const DefaultSetNumberPattern = `\d{1,3}/\d{1,5}`

// DefaultDenylist contains card category labels and their common OCR misreads.
// None of these is ever a card name.
var DefaultDenylist = []string{
	"hp", "trainer", "basic", "item", "stage",
	"basc", "utem", "iten", "splash", "typhoon", "basis", "basig",
	"ability", "attack", "damage", "weakness", "resistance", "cd",
}

// ExtractorConfig holds configuration for the card extractor
type ExtractorConfig struct {
	Denylist         []string
	SetNumberPattern string
}

// CardExtractor guesses the card name and set number from OCR lines
type CardExtractor struct {
	denylist         map[string]struct{}
	setNumberPattern *regexp.Regexp
}

// NewCardExtractor creates a card extractor.
// An empty config falls back to DefaultDenylist and DefaultSetNumberPattern.
func NewCardExtractor(config ExtractorConfig) (*CardExtractor, error) {
	words := config.Denylist
	if len(words) == 0 {
		words = DefaultDenylist
	}

	pattern := config.SetNumberPattern
	if pattern == "" {
		pattern = DefaultSetNumberPattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid set number pattern %q: %w", pattern, err)
	}

	denylist := make(map[string]struct{}, len(words))
	for _, w := range words {
		denylist[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	return &CardExtractor{
		denylist:         denylist,
		setNumberPattern: re,
	}, nil
}

// Extract runs both heuristics over the same OCR lines
func (e *CardExtractor) Extract(lines []string) domain.ExtractionResult {
	return domain.ExtractionResult{
		ItemName:  e.ClassifyItemName(lines),
		SetNumber: e.ExtractSetNumber(lines),
	}
}

// ClassifyItemName returns the first token that is longer than one character
// and not on the denylist. Tokens are compared as-is, punctuation included.
func (e *CardExtractor) ClassifyItemName(lines []string) string {
	for _, token := range strings.Fields(strings.Join(lines, " ")) {
		if utf8.RuneCountInString(token) <= 1 {
			continue
		}
		if _, denied := e.denylist[strings.ToLower(token)]; denied {
			continue
		}
		return token
	}
	return domain.NotDetected
}

// ExtractSetNumber returns the leftmost set number found in the OCR lines
func (e *CardExtractor) ExtractSetNumber(lines []string) string {
	if match := e.setNumberPattern.FindString(strings.Join(lines, " ")); match != "" {
		return match
	}
	return domain.NotDetected
}
