package engine

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/pricing"
)

// Margin enforces the minimum-profit floor on a target price.
// ⭐ SSOT: 마진 하한 적용은 여기서만
//
// The undercut policy runs first; the margin floor always wins
// afterwards. The system sacrifices competitiveness to protect
// margin, never the reverse.
type Margin struct{}

// NewMargin creates a margin enforcer
func NewMargin() *Margin {
	return &Margin{}
}

// Apply returns the target price raised to the floor
// (unit cost + minimum margin) when it sits below it, otherwise the
// target unchanged. Never fails: raising to the floor is always
// possible; sanity checking the result is the orchestrator's job.
func (m *Margin) Apply(target, unitCost, minimumMargin decimal.Decimal) decimal.Decimal {
	floor := unitCost.Add(minimumMargin)
	if target.LessThan(floor) {
		return pricing.RoundCurrency(floor)
	}
	return target
}

// Floor exposes the margin floor for sanity checks and logging.
func Floor(unitCost, minimumMargin decimal.Decimal) decimal.Decimal {
	return unitCost.Add(minimumMargin)
}
