package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TextRecognizer turns raw image bytes into recognized text lines, in detection order.
// An image without text yields an empty slice and a nil error.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) ([]string, error)
}

// MarketplaceSearcher searches the marketplace for listings of a card
type MarketplaceSearcher interface {
	Search(ctx context.Context, itemName, setNumber string) ([]Listing, error)
}

// TokenProvider hands out OAuth access tokens for the marketplace API
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate drops the cached token so the next Token call fetches a new one
	Invalidate()
}
