package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cardscan/backend/config"
	"github.com/cardscan/backend/internal/infrastructure/cache"
	"github.com/cardscan/backend/internal/infrastructure/ebay"
	"github.com/cardscan/backend/internal/infrastructure/ocr/tesseract"
	"github.com/cardscan/backend/internal/usecase"
)

// app holds the wired dependencies shared by serve and scan
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   cache.Store
	scanner *usecase.ScanService
}

// newLogger returns a text logger in development and a JSON logger otherwise
func newLogger(environment string) *slog.Logger {
	if environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// newApp loads configuration and builds the scan pipeline
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.Server.Environment)

	store, err := cache.New(ctx, cfg.Cache.Type, cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	tokens := ebay.NewTokenSource(ebay.TokenConfig{
		ClientID:     cfg.Ebay.ClientID,
		ClientSecret: cfg.Ebay.ClientSecret,
		TokenURL:     cfg.Ebay.OAuthURL,
		Scope:        cfg.Ebay.Scope,
		TTL:          cfg.Ebay.TokenTTL,
		Logger:       logger,
	})

	marketplace := ebay.NewClient(tokens, ebay.ClientConfig{
		SearchURL:       cfg.Ebay.SearchURL,
		MarketplaceID:   cfg.Ebay.MarketplaceID,
		ResultLimit:     cfg.Ebay.ResultLimit,
		RequestsPerHour: cfg.RateLimit.Ebay,
		Logger:          logger,
	})

	recognizer := tesseract.NewRecognizer(tesseract.Config{
		Language:  cfg.OCR.Language,
		MinHeight: cfg.OCR.MinHeight,
		Logger:    logger,
	})

	extractor, err := usecase.NewCardExtractor(usecase.ExtractorConfig{
		Denylist:         cfg.Extraction.Denylist,
		SetNumberPattern: cfg.Extraction.SetNumberPattern,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	scanner := usecase.NewScanService(recognizer, marketplace, extractor, store, logger,
		usecase.ScanServiceConfig{CacheTTL: cfg.Cache.TTL})

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   store,
		scanner: scanner,
	}, nil
}

// Close releases the cache connection
func (a *app) Close() error {
	return a.cache.Close()
}
