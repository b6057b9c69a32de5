package engine

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/internal/pricing"
)

// Gate decides whether a computed price differs enough from the
// current price to justify an update. Pure comparison, no side
// effects; it exists to stop churn from negligible recalculations.
// ⭐ SSOT: 가격 변경 승인 여부는 여기서만 판단
type Gate struct {
	threshold decimal.Decimal // minimum absolute delta
}

// NewGate creates a change gate with the given threshold (e.g. 0.05)
func NewGate(threshold decimal.Decimal) *Gate {
	return &Gate{threshold: threshold}
}

// Evaluate approves when |new − old| ≥ threshold.
func (g *Gate) Evaluate(oldPrice, newPrice decimal.Decimal) contracts.GateResult {
	delta := pricing.AbsDiff(newPrice, oldPrice)

	if delta.GreaterThanOrEqual(g.threshold) {
		return contracts.GateResult{
			Approved: true,
			Reason:   contracts.ReasonAutoSync,
			Delta:    delta,
		}
	}

	return contracts.GateResult{
		Approved: false,
		Reason:   contracts.SkipBelowChangeThreshold,
		Delta:    delta,
	}
}
