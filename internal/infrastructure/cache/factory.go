package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/cardscan/backend/internal/domain"
)

// Store is a cache repository that holds resources which must be released
type Store interface {
	domain.CacheRepository
	io.Closer
}

// New creates the cache selected by cacheType ("memory" or "redis")
func New(ctx context.Context, cacheType, redisURL string) (Store, error) {
	switch cacheType {
	case "", "memory":
		return NewMemoryCache(), nil
	case "redis":
		rc, err := NewRedisCache(ctx, redisURL, "cardscan:")
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cacheType)
	}
}
