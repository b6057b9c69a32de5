package serp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/logger"
	"github.com/wonny/pricesync/pkg/redis"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{
		Serp: config.SerpConfig{
			BaseURL:  baseURL,
			APIKey:   "serp-key",
			CacheTTL: time.Minute,
		},
	}
	cache := redis.NewCache(redis.Disabled(), "pricesync")
	c := NewClient(cfg, cache, logger.NewNop())
	c.http.DisableRetry()
	return c
}

func TestFetchPricesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SKU-1", r.URL.Query().Get("q"))
		assert.Equal(t, "serp-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"price": "20.00"}, {"price": "21.50"}, {"price": "19.80"}]}`))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).FetchPrices(context.Background(), "SKU-1")
	require.NoError(t, err)

	require.Len(t, prices, 3)
	assert.True(t, prices[0].Equal(decimal.RequireFromString("20.00")))
	assert.True(t, prices[2].Equal(decimal.RequireFromString("19.80")))
}

func TestFetchPricesSkipsInvalidEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"price": "20.00"}, {"price": "n/a"}, {"price": "-3.00"}]}`))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).FetchPrices(context.Background(), "SKU-1")
	require.NoError(t, err)
	require.Len(t, prices, 1)
}

func TestFetchPricesHTMLFallback(t *testing.T) {
	page := `
		<html><body>
			<div class="result"><span class="price">$20.00</span></div>
			<div class="result"><span class="price">$1,021.50</span></div>
			<div class="result"><span class="price">sold out</span></div>
		</body></html>
	`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).FetchPrices(context.Background(), "SKU-1")
	require.NoError(t, err)

	require.Len(t, prices, 2)
	assert.True(t, prices[1].Equal(decimal.RequireFromString("1021.50")))
}

func TestFetchPricesNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	prices, err := newTestClient(server.URL).FetchPrices(context.Background(), "SKU-404")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestFetchPricesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPrices(context.Background(), "SKU-1")
	require.Error(t, err)
}
