package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pricesync/internal/api/handlers"
	"github.com/wonny/pricesync/internal/catalog"
	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/internal/engine"
	"github.com/wonny/pricesync/pkg/logger"
)

type stubGateway struct{}

func (stubGateway) FetchQuote(ctx context.Context, entry *contracts.SupplierEntry, token string) (*contracts.SupplierQuote, error) {
	return &contracts.SupplierQuote{
		EntryID:      entry.ID,
		SupplierName: entry.Name,
		UnitCost:     decimal.RequireFromString("4.80"),
		Stock:        120,
		QualityScore: entry.QualityScore,
		FetchedAt:    time.Now(),
	}, nil
}

type stubCompetitors struct{}

func (stubCompetitors) FetchPrices(ctx context.Context, sku string) ([]decimal.Decimal, error) {
	return []decimal.Decimal{
		decimal.RequireFromString("20.00"),
		decimal.RequireFromString("21.50"),
		decimal.RequireFromString("19.80"),
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *catalog.MemoryStore) {
	t.Helper()

	store := catalog.NewMemoryStore()
	store.SeedProduct(contracts.Product{
		ID:              42,
		SKU:             "SKU-1",
		Name:            "test product",
		CurrentPrice:    decimal.RequireFromString("19.60"),
		MinimumMargin:   decimal.RequireFromString("5.00"),
		SupplierEntries: []int64{1},
	})
	store.SeedEntry(contracts.SupplierEntry{
		ID: 1, SupplierID: 1, Name: "acme", SupplierProductID: "SP-1",
		QualityScore: 85, CredentialRef: "alpha", BaseURL: "https://acme.example.com",
	})

	log := logger.NewNop()
	orch := engine.NewOrchestrator(
		store, store,
		engine.NewCollector(store, stubGateway{}, engine.NewStaticResolver(map[string]string{"alpha": "t"}), log),
		engine.NewSelector(70, log),
		engine.NewAggregator(),
		engine.NewMargin(),
		engine.NewGate(decimal.RequireFromString("0.05")),
		stubCompetitors{},
		engine.Config{
			Workers:          1,
			MarkupMultiplier: decimal.RequireFromString("2.50"),
			SanityMultiplier: decimal.RequireFromString("3.0"),
		},
		log,
	)

	router := NewRouter(RouterConfig{
		Products: handlers.NewProductHandler(store, log),
		Sync:     handlers.NewSyncHandler(orch, store, log),
	}, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, store
}

func getJSON(t *testing.T, url string, dest interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body map[string]interface{}
	status := getJSON(t, server.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListProducts(t *testing.T) {
	server, _ := newTestServer(t)

	var body struct {
		Count int `json:"count"`
	}
	status := getJSON(t, server.URL+"/api/products", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Count)
}

func TestGetProduct(t *testing.T) {
	server, _ := newTestServer(t)

	var body struct {
		SKU string `json:"sku"`
	}
	status := getJSON(t, server.URL+"/api/products/42", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SKU-1", body.SKU)

	assert.Equal(t, http.StatusNotFound, getJSON(t, server.URL+"/api/products/999", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/products/abc", nil))
}

func TestSyncProductEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/products/42/sync", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decision contracts.PricingDecision
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
	assert.Equal(t, contracts.OutcomeUpdated, decision.Outcome)
	assert.True(t, decision.NewPrice.Equal(decimal.RequireFromString("20.02")))

	product, err := store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, product.CurrentPrice.Equal(decimal.RequireFromString("20.02")))
}

func TestListDecisions(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/products/42/sync", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	var body struct {
		Count int `json:"count"`
	}
	status := getJSON(t, server.URL+"/api/decisions", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Count)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/api/decisions?limit=0", nil))
}

func TestTriggerCycle(t *testing.T) {
	server, store := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/sync", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// the cycle runs in the background
	require.Eventually(t, func() bool {
		product, err := store.GetByID(context.Background(), 42)
		return err == nil && product.CurrentPrice.Equal(decimal.RequireFromString("20.02"))
	}, 2*time.Second, 20*time.Millisecond)
}
