package supplier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/httputil"
	"github.com/wonny/pricesync/pkg/logger"
	"github.com/wonny/pricesync/pkg/redis"
)

// Client implements contracts.SupplierGateway against the common
// supplier quote API: GET {base_url}/products/{supplier_product_id}
// with a bearer token.
// ⭐ SSOT: 공급처 API 호출은 여기서만
type Client struct {
	http   *httputil.Client
	logger *logger.Logger
}

// NewClient creates a new supplier API client
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	httpClient := httputil.New(log, cfg.Supplier.FetchTimeout).
		WithRetry(2, 500*time.Millisecond)

	return &Client{
		http:   httpClient,
		logger: log.WithField("module", "supplier"),
	}
}

// WithRateLimiter applies a shared per-window rate limit to all
// supplier calls made by this client.
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	c.http.WithRateLimiter(limiter, cfg)
	return c
}

// quoteResponse is the supplier API wire format. Prices travel as
// strings; parsing them as floats would corrupt cents.
type quoteResponse struct {
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

// FetchQuote retrieves the current unit cost and stock for one entry
func (c *Client) FetchQuote(ctx context.Context, entry *contracts.SupplierEntry, token string) (*contracts.SupplierQuote, error) {
	url := fmt.Sprintf("%s/products/%s",
		strings.TrimRight(entry.BaseURL, "/"), entry.SupplierProductID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supplier %s request failed: %w", entry.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supplier %s returned status %d", entry.Name, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("supplier %s returned malformed response: %w", entry.Name, err)
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		return nil, fmt.Errorf("supplier %s returned invalid price %q: %w", entry.Name, body.Price, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("supplier %s returned non-positive price %s", entry.Name, price)
	}
	if body.Stock < 0 {
		return nil, fmt.Errorf("supplier %s returned negative stock %d", entry.Name, body.Stock)
	}

	return &contracts.SupplierQuote{
		EntryID:      entry.ID,
		SupplierName: entry.Name,
		UnitCost:     price,
		Stock:        body.Stock,
		QualityScore: entry.QualityScore,
		FetchedAt:    time.Now(),
	}, nil
}
