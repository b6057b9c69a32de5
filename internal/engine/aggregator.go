package engine

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/internal/pricing"
)

// undercutFactor targets 98% of the mean competitor price.
var undercutFactor = decimal.RequireFromString("0.98")

// Aggregator turns observed competitor prices into a target price.
// ⭐ SSOT: 경쟁가 기반 목표 가격은 여기서만 산출
type Aggregator struct{}

// NewAggregator creates a competitor price aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Target computes mean × 0.98, rounded half-up to two decimals.
// Empty input returns ErrNoCompetitorData; the fallback markup is the
// orchestrator's policy, not the aggregator's.
func (a *Aggregator) Target(prices []decimal.Decimal) (decimal.Decimal, error) {
	if len(prices) == 0 {
		return decimal.Zero, contracts.ErrNoCompetitorData
	}

	target := pricing.Mean(prices).Mul(undercutFactor)
	return pricing.RoundCurrency(target), nil
}

// MarkupFallback derives a price from the chosen supplier's unit cost
// when no competitor data exists: cost × multiplier, rounded.
func MarkupFallback(unitCost, multiplier decimal.Decimal) decimal.Decimal {
	return pricing.RoundCurrency(unitCost.Mul(multiplier))
}
