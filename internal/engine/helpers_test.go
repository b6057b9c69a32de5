package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func quote(entryID int64, cost string, stock, quality int) contracts.SupplierQuote {
	return contracts.SupplierQuote{
		EntryID:      entryID,
		SupplierName: "supplier",
		UnitCost:     d(cost),
		Stock:        stock,
		QualityScore: quality,
		FetchedAt:    time.Now(),
	}
}

// fakeGateway serves canned quotes keyed by entry id
type fakeGateway struct {
	mu      sync.Mutex
	quotes  map[int64]contracts.SupplierQuote
	errs    map[int64]error
	panicOn map[int64]bool
	calls   int
}

func (g *fakeGateway) FetchQuote(ctx context.Context, entry *contracts.SupplierEntry, token string) (*contracts.SupplierQuote, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.panicOn[entry.ID] {
		panic("gateway exploded")
	}
	if err, ok := g.errs[entry.ID]; ok {
		return nil, err
	}
	q, ok := g.quotes[entry.ID]
	if !ok {
		return nil, contracts.ErrSupplierFetchFailed
	}
	return &q, nil
}

// fakeCompetitors serves canned price lists keyed by SKU
type fakeCompetitors struct {
	prices map[string][]decimal.Decimal
	err    error
}

func (c *fakeCompetitors) FetchPrices(ctx context.Context, sku string) ([]decimal.Decimal, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.prices[sku], nil
}

type pushCall struct {
	productID int64
	price     decimal.Decimal
}

// fakePusher records store pushes
type fakePusher struct {
	mu     sync.Mutex
	pushes []pushCall
	err    error
}

func (p *fakePusher) PushPrice(ctx context.Context, productID int64, price decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushCall{productID: productID, price: price})
	return p.err
}

func (p *fakePusher) calls() []pushCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushCall(nil), p.pushes...)
}

// recordingSink collects published decisions
type recordingSink struct {
	mu        sync.Mutex
	decisions []contracts.PricingDecision
}

func (s *recordingSink) Publish(decision *contracts.PricingDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, *decision)
}

func (s *recordingSink) all() []contracts.PricingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contracts.PricingDecision(nil), s.decisions...)
}
