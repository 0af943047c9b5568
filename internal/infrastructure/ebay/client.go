package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/cardscan/backend/internal/domain"
)

// Defaults for the Browse API search
const (
	DefaultResultLimit   = 5
	DefaultMarketplaceID = "EBAY_US"
)

// errTokenRejected marks a search answered with 401, the only case that is retried
var errTokenRejected = errors.New("access token rejected")

// ClientConfig holds configuration for the Browse API client
type ClientConfig struct {
	SearchURL       string
	MarketplaceID   string
	ResultLimit     int
	RequestsPerHour int
	HTTPClient      *http.Client
	Logger          *slog.Logger
}

// Client searches the eBay Browse API
type Client struct {
	httpClient    *http.Client
	tokens        domain.TokenProvider
	searchURL     string
	marketplaceID string
	limit         int
	rateLimiter   *rate.Limiter
	logger        *slog.Logger
}

// NewClient creates a new eBay Browse API client
func NewClient(tokens domain.TokenProvider, cfg ClientConfig) *Client {
	limit := cfg.ResultLimit
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	marketplaceID := cfg.MarketplaceID
	if marketplaceID == "" {
		marketplaceID = DefaultMarketplaceID
	}

	// rate.Limit is requests per second; burst of 10 requests
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerHour > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerHour)/3600), 10)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:    httpClient,
		tokens:        tokens,
		searchURL:     cfg.SearchURL,
		marketplaceID: marketplaceID,
		limit:         limit,
		rateLimiter:   limiter,
		logger:        logger,
	}
}

// BuildQuery joins the card name and set number into a search string
func BuildQuery(itemName, setNumber string) string {
	return strings.TrimSpace(itemName + " " + setNumber)
}

// Search looks up listings for a card. A rejected token is invalidated and
// the search is attempted once more with a fresh one.
func (c *Client) Search(ctx context.Context, itemName, setNumber string) ([]domain.Listing, error) {
	query := BuildQuery(itemName, setNumber)
	c.logger.Info("[EBAY] search", slog.String("query", query))

	var listings []domain.Listing
	err := retry.Do(
		func() error {
			result, err := c.searchOnce(ctx, query)
			if err != nil {
				return err
			}
			listings = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errTokenRejected)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("[EBAY] token rejected, refreshing", slog.Uint64("attempt", uint64(n+1)))
			c.tokens.Invalidate()
		}),
	)
	if err != nil {
		if errors.Is(err, errTokenRejected) {
			c.tokens.Invalidate()
			return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAuth, err)
		}
		return nil, err
	}

	c.logger.Info("[EBAY] search results", slog.String("query", query), slog.Int("count", len(listings)))
	return listings, nil
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]domain.Listing, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrMarketplaceSearch, err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrMarketplaceSearch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplaceID)
	req.Header.Set("User-Agent", "CardScan/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("[EBAY] request error", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceSearch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrMarketplaceSearch, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: status %d", errTokenRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("[EBAY] API error", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrMarketplaceSearch, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMarketplaceSearch, err)
	}

	return mapToListings(searchResp.ItemSummaries), nil
}
