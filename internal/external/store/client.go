package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/httputil"
	"github.com/wonny/pricesync/pkg/logger"
)

// Client implements contracts.StorePusher against the storefront API:
// POST {base_url}/products/{id}/price. Push failures are the caller's
// business to tolerate; this client only reports them.
// ⭐ SSOT: 스토어 가격 푸시는 여기서만
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates a new storefront push client
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http:    httputil.New(log, cfg.Store.PushTimeout),
		baseURL: strings.TrimRight(cfg.Store.BaseURL, "/"),
		apiKey:  cfg.Store.APIKey,
		logger:  log.WithField("module", "store"),
	}
}

type pushRequest struct {
	Price string `json:"price"`
}

// PushPrice publishes a new selling price to the storefront
func (c *Client) PushPrice(ctx context.Context, productID int64, price decimal.Decimal) error {
	url := fmt.Sprintf("%s/products/%d/price", c.baseURL, productID)

	body := pushRequest{Price: price.StringFixed(2)}
	req, err := newJSONRequest(ctx, url, body, c.apiKey)
	if err != nil {
		return fmt.Errorf("failed to create store push request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("store push returned status %d", resp.StatusCode)
	}

	c.logger.WithFields(map[string]interface{}{
		"product_id": productID,
		"price":      price.String(),
	}).Debug("Price pushed to store")

	return nil
}

// newJSONRequest builds an authenticated JSON POST request
func newJSONRequest(ctx context.Context, url string, payload interface{}, apiKey string) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	return req, nil
}
