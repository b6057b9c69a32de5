package supplier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/logger"
)

func newTestClient() *Client {
	cfg := &config.Config{
		Supplier: config.SupplierConfig{FetchTimeout: 2 * time.Second},
	}
	c := NewClient(cfg, logger.NewNop())
	c.http.DisableRetry()
	return c
}

func entryFor(server *httptest.Server) *contracts.SupplierEntry {
	return &contracts.SupplierEntry{
		ID:                1,
		SupplierID:        10,
		Name:              "acme",
		SupplierProductID: "SP-77",
		QualityScore:      85,
		CredentialRef:     "acme",
		BaseURL:           server.URL,
	}
}

func TestFetchQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/SP-77", r.URL.Path)
		assert.Equal(t, "Bearer token-a", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": "4.80", "stock": 120}`))
	}))
	defer server.Close()

	quote, err := newTestClient().FetchQuote(context.Background(), entryFor(server), "token-a")
	require.NoError(t, err)

	assert.Equal(t, int64(1), quote.EntryID)
	assert.Equal(t, "acme", quote.SupplierName)
	assert.True(t, quote.UnitCost.Equal(decimal.RequireFromString("4.80")))
	assert.Equal(t, 120, quote.Stock)
	assert.Equal(t, 85, quote.QualityScore)
	assert.True(t, quote.InStock())
}

func TestFetchQuoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "server error", status: http.StatusInternalServerError, payload: `{}`},
		{name: "not found", status: http.StatusNotFound, payload: `{}`},
		{name: "malformed body", status: http.StatusOK, payload: `{"price": `},
		{name: "invalid price", status: http.StatusOK, payload: `{"price": "abc", "stock": 5}`},
		{name: "zero price", status: http.StatusOK, payload: `{"price": "0", "stock": 5}`},
		{name: "negative stock", status: http.StatusOK, payload: `{"price": "4.80", "stock": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer server.Close()

			_, err := newTestClient().FetchQuote(context.Background(), entryFor(server), "token-a")
			require.Error(t, err)
		})
	}
}

func TestFetchQuoteTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"price": "4.80", "stock": 1}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		Supplier: config.SupplierConfig{FetchTimeout: 50 * time.Millisecond},
	}
	c := NewClient(cfg, logger.NewNop())
	c.http.DisableRetry()

	_, err := c.FetchQuote(context.Background(), entryFor(server), "token-a")
	require.Error(t, err)
}
