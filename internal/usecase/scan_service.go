package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/cardscan/backend/internal/domain"
)

var multipleSpacesRegex = regexp.MustCompile(`\s+`)

// ScanServiceConfig holds configuration for the scan service
type ScanServiceConfig struct {
	CacheTTL time.Duration
}

// ScanService runs the scan pipeline: OCR, extraction, marketplace search
type ScanService struct {
	recognizer  domain.TextRecognizer
	marketplace domain.MarketplaceSearcher
	extractor   *CardExtractor
	cache       domain.CacheRepository
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewScanService creates a new scan service with dependencies.
// cache may be nil, in which case every search goes to the marketplace.
func NewScanService(
	recognizer domain.TextRecognizer,
	marketplace domain.MarketplaceSearcher,
	extractor *CardExtractor,
	cache domain.CacheRepository,
	logger *slog.Logger,
	config ScanServiceConfig,
) *ScanService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ScanService{
		recognizer:  recognizer,
		marketplace: marketplace,
		extractor:   extractor,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Scan recognizes the card in image and looks up its listings.
// Flow: OCR -> extract name and set number -> search (cached) -> return
func (s *ScanService) Scan(ctx context.Context, image []byte) (*domain.ScanResult, error) {
	lines, extraction, err := s.Extract(ctx, image)
	if err != nil {
		return nil, err
	}

	s.logger.Info("[SCAN] extracted card",
		slog.String("card_name", extraction.ItemName),
		slog.String("set_number", extraction.SetNumber),
		slog.Int("lines", len(lines)))

	listings, err := s.Search(ctx, extraction.ItemName, extraction.SetNumber)
	if err != nil {
		return nil, err
	}

	return &domain.ScanResult{
		Text:          lines,
		CardName:      extraction.ItemName,
		CardSetNumber: extraction.SetNumber,
		Listings:      listings,
	}, nil
}

// Extract runs OCR and extraction only, without a marketplace search
func (s *ScanService) Extract(ctx context.Context, image []byte) ([]string, domain.ExtractionResult, error) {
	if len(image) == 0 {
		return nil, domain.ExtractionResult{}, domain.ErrEmptyUpload
	}

	lines, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return nil, domain.ExtractionResult{}, wrapOCRError(err)
	}
	if len(lines) == 0 {
		return nil, domain.ExtractionResult{}, domain.ErrNoTextDetected
	}

	return lines, s.extractor.Extract(lines), nil
}

// Search looks up marketplace listings for a card name and set number
func (s *ScanService) Search(ctx context.Context, cardName, setNumber string) ([]domain.Listing, error) {
	cardName = strings.TrimSpace(cardName)
	setNumber = strings.TrimSpace(setNumber)
	if cardName == "" || setNumber == "" {
		return nil, fmt.Errorf("%w: card name and set number are required", domain.ErrInvalidRequest)
	}

	cacheKey := generateCacheKey(cardName, setNumber)

	if listings, ok := s.getFromCache(ctx, cacheKey); ok {
		s.logger.Debug("[SCAN] listings served from cache", slog.String("key", cacheKey))
		return listings, nil
	}

	listings, err := s.marketplace.Search(ctx, cardName, setNumber)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, listings); err != nil {
		s.logger.Warn("[SCAN] failed to cache listings", slog.String("key", cacheKey), slog.String("err", err.Error()))
	}

	return listings, nil
}

// generateCacheKey creates a normalized cache key.
// Format: "listings:{lowercased name} {set number}"
func generateCacheKey(cardName, setNumber string) string {
	query := strings.ToLower(cardName + " " + setNumber)
	query = multipleSpacesRegex.ReplaceAllString(query, " ")
	return "listings:" + strings.TrimSpace(query)
}

func (s *ScanService) getFromCache(ctx context.Context, key string) ([]domain.Listing, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("[SCAN] cache lookup failed", slog.String("key", key), slog.String("err", err.Error()))
		}
		return nil, false
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		s.logger.Warn("[SCAN] discarding corrupt cache entry", slog.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return listings, true
}

func (s *ScanService) setInCache(ctx context.Context, key string, listings []domain.Listing) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}

// wrapOCRError keeps known OCR errors and classifies everything else as an engine failure
func wrapOCRError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrOCRFailure),
		errors.Is(err, domain.ErrEmptyUpload),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}
}
