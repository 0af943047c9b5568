package ebay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardscan/backend/internal/domain"
)

// fakeTokens hands out "token-N", bumping N on every Invalidate
type fakeTokens struct {
	mu          sync.Mutex
	generation  int
	err         error
	invalidated int
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "token-" + string(rune('1'+f.generation)), nil
}

func (f *fakeTokens) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.invalidated++
}

const searchBody = `{
	"total": 2,
	"itemSummaries": [
		{"title":"Charizard 4/102 Holo","price":{"value":"350.00","currency":"USD"},"itemLocation":{"country":"US"},"itemWebUrl":"https://www.ebay.com/itm/1"},
		{"title":"Charizard 4/102 Played","itemWebUrl":"https://www.ebay.com/itm/2"}
	]
}`

func newTestClient(tokens domain.TokenProvider, url string) *Client {
	return NewClient(tokens, ClientConfig{
		SearchURL: url,
		Logger:    discardLogger(),
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(&fakeTokens{}, ClientConfig{SearchURL: "https://api.example.com"})

	assert.Equal(t, DefaultResultLimit, client.limit)
	assert.Equal(t, DefaultMarketplaceID, client.marketplaceID)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Charizard 4/102", BuildQuery("Charizard", "4/102"))
	assert.Equal(t, "Charizard Not Detected", BuildQuery("Charizard", domain.NotDetected))
	assert.Equal(t, "Pikachu", BuildQuery("Pikachu", ""))
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "EBAY_US", r.Header.Get("X-EBAY-C-MARKETPLACE-ID"))
		assert.Equal(t, "Charizard 4/102", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer server.Close()

	client := newTestClient(&fakeTokens{}, server.URL)

	listings, err := client.Search(context.Background(), "Charizard", "4/102")

	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "Charizard 4/102 Holo", listings[0].Title)
	assert.Equal(t, "350.00", listings[0].Price)
	assert.Equal(t, "USD", listings[0].Currency)
	assert.Equal(t, "US", listings[0].Location)
	assert.Equal(t, "https://www.ebay.com/itm/1", listings[0].URL)
	assert.Equal(t, NotAvailable, listings[1].Price)
}

func TestSearch_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":0}`))
	}))
	defer server.Close()

	client := newTestClient(&fakeTokens{}, server.URL)

	listings, err := client.Search(context.Background(), "Nothing", "1/1")

	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestSearch_ServerError_NoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	}))
	defer server.Close()

	client := newTestClient(&fakeTokens{}, server.URL)

	listings, err := client.Search(context.Background(), "Charizard", "4/102")

	assert.Nil(t, listings)
	assert.ErrorIs(t, err, domain.ErrMarketplaceSearch)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearch_RefreshesRejectedToken(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer server.Close()

	tokens := &fakeTokens{}
	client := newTestClient(tokens, server.URL)

	listings, err := client.Search(context.Background(), "Charizard", "4/102")

	require.NoError(t, err)
	assert.Len(t, listings, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, tokens.invalidated)
}

func TestSearch_RejectedTwiceIsAuthError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(&fakeTokens{}, server.URL)

	_, err := client.Search(context.Background(), "Charizard", "4/102")

	assert.ErrorIs(t, err, domain.ErrMarketplaceAuth)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearch_TokenFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	tokens := &fakeTokens{err: domain.ErrMarketplaceAuth}
	client := newTestClient(tokens, server.URL)

	_, err := client.Search(context.Background(), "Charizard", "4/102")

	assert.ErrorIs(t, err, domain.ErrMarketplaceAuth)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestSearch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(&fakeTokens{}, url)

	_, err := client.Search(context.Background(), "Charizard", "4/102")

	assert.ErrorIs(t, err, domain.ErrMarketplaceSearch)
}

func TestSearch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(&fakeTokens{}, server.URL)

	_, err := client.Search(context.Background(), "Charizard", "4/102")

	assert.ErrorIs(t, err, domain.ErrMarketplaceSearch)
}

func TestSearch_ConcurrentFirstUseWithRealTokenSource(t *testing.T) {
	var fetches int32
	tokenServer := newTokenServer(t, &fetches)
	defer tokenServer.Close()

	searchServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer searchServer.Close()

	client := newTestClient(newTestTokenSource(tokenServer.URL), searchServer.URL)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listings, err := client.Search(context.Background(), "Charizard", "4/102")
			assert.NoError(t, err)
			assert.Len(t, listings, 2)
		}()
	}
	wg.Wait()

	got := atomic.LoadInt32(&fetches)
	assert.True(t, got == 1 || got == 2, "expected one or two token fetches, got %d", got)
}
