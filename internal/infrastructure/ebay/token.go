package ebay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cardscan/backend/internal/domain"
)

// DefaultScope is the public Browse API scope granted to client-credentials tokens
const DefaultScope = "https://api.ebay.com/oauth/api_scope"

// expirySkew is subtracted from the server-reported expiry
const expirySkew = time.Minute

// TokenConfig holds configuration for the OAuth token source
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string
	TTL          time.Duration // upper bound on how long a token is reused; 0 trusts the server expiry
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// TokenSource fetches and caches eBay application tokens using the
// client-credentials grant.
//
// The cached token is guarded by a mutex but fetched without holding it, so
// concurrent callers that find no valid token may each fetch one. The last
// fetch wins; every caller still gets a working token.
type TokenSource struct {
	oauth      clientcredentials.Config
	ttl        time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	token *domain.MarketplaceToken
}

// NewTokenSource creates a token source. No request is made until Token is called.
func NewTokenSource(cfg TokenConfig) *TokenSource {
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenSource{
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		ttl:        cfg.TTL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Token returns the cached access token, fetching a new one when none is
// cached or the cached one has expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cached(); ok {
		return tok, nil
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = fetched
	s.mu.Unlock()

	return fetched.Value, nil
}

// Invalidate drops the cached token
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != nil {
		s.logger.Info("[EBAY] invalidating cached OAuth token")
	}
	s.token = nil
}

func (s *TokenSource) cached() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || !s.valid(s.token) {
		return "", false
	}
	return s.token.Value, true
}

func (s *TokenSource) valid(tok *domain.MarketplaceToken) bool {
	now := s.now()
	if s.ttl > 0 && !now.Before(tok.ObtainedAt.Add(s.ttl)) {
		return false
	}
	if !tok.ExpiresAt.IsZero() && !now.Before(tok.ExpiresAt.Add(-expirySkew)) {
		return false
	}
	return true
}

func (s *TokenSource) fetch(ctx context.Context) (*domain.MarketplaceToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	tok, err := s.oauth.Token(ctx)
	if err != nil {
		s.logger.Error("[EBAY] error fetching OAuth token", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketplaceAuth, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access_token in response", domain.ErrMarketplaceAuth)
	}

	s.logger.Info("[EBAY] retrieved OAuth token", slog.Time("expires_at", tok.Expiry))

	return &domain.MarketplaceToken{
		Value:      tok.AccessToken,
		ObtainedAt: s.now(),
		ExpiresAt:  tok.Expiry,
	}, nil
}
