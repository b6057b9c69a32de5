package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/httputil"
	"github.com/wonny/pricesync/pkg/logger"
	"github.com/wonny/pricesync/pkg/redis"
)

// Client implements contracts.CompetitorSource against the SERP
// provider. The JSON API is the primary path; when the provider serves
// an HTML results page instead, prices are scraped from it.
// ⭐ SSOT: 경쟁가 조회는 이 클라이언트에서만
type Client struct {
	http     *httputil.Client
	cache    *redis.Cache
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewClient creates a new competitor price client. cache may be a
// disabled Redis client; lookups then always hit the provider.
func NewClient(cfg *config.Config, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		http:     httputil.New(log, 10*time.Second),
		cache:    cache,
		baseURL:  strings.TrimRight(cfg.Serp.BaseURL, "/"),
		apiKey:   cfg.Serp.APIKey,
		cacheTTL: cfg.Serp.CacheTTL,
		logger:   log.WithField("module", "serp"),
	}
}

type searchResponse struct {
	Results []struct {
		Price string `json:"price"`
	} `json:"results"`
}

// FetchPrices returns observed competitor prices for a SKU, newest
// observation cached per SKU. An empty slice means no data, not an
// error.
func (c *Client) FetchPrices(ctx context.Context, sku string) ([]decimal.Decimal, error) {
	cacheKey := fmt.Sprintf("serp:%s", sku)

	var cached []string
	if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		c.logger.WithField("sku", sku).Debug("Competitor prices served from cache")
		return parsePriceStrings(cached), nil
	}

	prices, err := c.fetch(ctx, sku)
	if err != nil {
		return nil, err
	}

	serialized := make([]string, 0, len(prices))
	for _, p := range prices {
		serialized = append(serialized, p.String())
	}
	if err := c.cache.Set(ctx, cacheKey, serialized, c.cacheTTL); err != nil {
		c.logger.WithField("sku", sku).Warn("Competitor price cache write failed")
	}

	return prices, nil
}

// fetch queries the provider and parses whichever format comes back
func (c *Client) fetch(ctx context.Context, sku string) ([]decimal.Decimal, error) {
	fullURL := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{
		"q":       {sku},
		"api_key": {c.apiKey},
	}.Encode())

	resp, err := c.http.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("competitor search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("competitor search returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		return c.parseHTML(resp)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("competitor search returned malformed response: %w", err)
	}

	prices := make([]decimal.Decimal, 0, len(body.Results))
	for _, result := range body.Results {
		if p, err := decimal.NewFromString(result.Price); err == nil && p.IsPositive() {
			prices = append(prices, p)
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"sku":   sku,
		"count": len(prices),
	}).Debug("Fetched competitor prices")
	return prices, nil
}

// parseHTML scrapes prices from an HTML results page
func (c *Client) parseHTML(resp *http.Response) ([]decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page failed: %w", err)
	}

	var prices []decimal.Decimal
	doc.Find(".result .price").Each(func(_ int, sel *goquery.Selection) {
		text := normalizePriceText(sel.Text())
		if p, err := decimal.NewFromString(text); err == nil && p.IsPositive() {
			prices = append(prices, p)
		}
	})

	return prices, nil
}

// normalizePriceText strips currency symbols and thousand separators
func normalizePriceText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimLeft(text, "$€£₩")
	return strings.ReplaceAll(text, ",", "")
}

// parsePriceStrings restores cached decimal strings, dropping any
// value that no longer parses
func parsePriceStrings(values []string) []decimal.Decimal {
	prices := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if p, err := decimal.NewFromString(v); err == nil {
			prices = append(prices, p)
		}
	}
	return prices
}
