package contracts

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteCollector turns a product's supplier entry references into
// validated quotes, tolerating individual failures.
// ⭐ SSOT: 견적 수집 인터페이스
type QuoteCollector interface {
	Collect(ctx context.Context, product *Product) ([]SupplierQuote, error)
}

// Selection is the selector's output: the chosen quote plus whether
// the quality threshold had to be relaxed to find it.
type Selection struct {
	Quote    SupplierQuote
	Degraded bool
}

// SupplierSelector picks one supplier from quotes using the
// quality/stock/cost policy. Returns ErrNoEligibleSupplier when no
// quote has stock.
// ⭐ SSOT: 공급처 선택 인터페이스
type SupplierSelector interface {
	Select(quotes []SupplierQuote) (*Selection, error)
}

// PriceAggregator turns observed competitor prices into a target
// price. Returns ErrNoCompetitorData for empty input; it never
// guesses.
// ⭐ SSOT: 경쟁가 집계 인터페이스
type PriceAggregator interface {
	Target(prices []decimal.Decimal) (decimal.Decimal, error)
}

// MarginEnforcer raises a target price to the margin floor when
// needed. It never fails; raising to the floor is always possible.
// ⭐ SSOT: 마진 하한 인터페이스
type MarginEnforcer interface {
	Apply(target, unitCost, minimumMargin decimal.Decimal) decimal.Decimal
}

// GateResult is the change gate's verdict.
type GateResult struct {
	Approved bool
	Reason   string
	Delta    decimal.Decimal // absolute difference
}

// ChangeGate decides whether a computed price differs enough from the
// current one to justify an update. Pure and side-effect free.
// ⭐ SSOT: 가격 변경 게이트 인터페이스
type ChangeGate interface {
	Evaluate(oldPrice, newPrice decimal.Decimal) GateResult
}

// CompetitorSource returns zero or more observed competitor prices
// for a SKU. Implementation (scraping, price API) is a collaborator
// concern.
type CompetitorSource interface {
	FetchPrices(ctx context.Context, sku string) ([]decimal.Decimal, error)
}

// CredentialResolver maps a supplier entry's credential reference to
// a bearer token. Absence is a fetch failure, not fatal to the batch.
type CredentialResolver interface {
	Resolve(ref string) (string, error)
}

// SupplierGateway fetches a live quote from a supplier's API.
type SupplierGateway interface {
	FetchQuote(ctx context.Context, entry *SupplierEntry, token string) (*SupplierQuote, error)
}

// StorePusher pushes an applied price to the external store. Failure
// is logged and never rolls back the catalog update.
type StorePusher interface {
	PushPrice(ctx context.Context, productID int64, price decimal.Decimal) error
}

// DecisionSink receives decisions as they are produced (websocket
// stream, metrics). Implementations must not block the pipeline.
type DecisionSink interface {
	Publish(decision *PricingDecision)
}
