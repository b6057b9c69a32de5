package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the terminal state of one product's sync pipeline.
type Outcome string

const (
	// OutcomeUpdated means a new selling price was persisted.
	OutcomeUpdated Outcome = "updated"

	// OutcomeSkipped means the pipeline finished without a price change.
	OutcomeSkipped Outcome = "skipped"
)

// Reason codes carried on decisions and audit records.
// ⭐ SSOT: 모든 로그와 DB row는 이 상수를 사용해야 함
const (
	// ReasonAutoSync is the only reason an automatic update is applied.
	ReasonAutoSync = "auto_sync_competitor_pricing"

	// SkipNoQuotes: no supplier quote could be collected.
	SkipNoQuotes = "no_quotes"

	// SkipNoEligibleSupplier: quotes exist but none has stock.
	SkipNoEligibleSupplier = "no_eligible_supplier"

	// SkipMarginFloorSanity: the margin floor implies an implausible
	// price jump; flagged for human review instead of auto-applied.
	SkipMarginFloorSanity = "margin_floor_sanity"

	// SkipBelowChangeThreshold: the computed price is too close to the
	// current one to be worth churning.
	SkipBelowChangeThreshold = "below_change_threshold"
)

// PricingDecision is the engine's output contract: at most one per
// product per cycle, handed to persistence and notification
// collaborators.
type PricingDecision struct {
	ID                string          `json:"id"`
	CycleID           string          `json:"cycle_id"`
	ProductID         int64           `json:"product_id"`
	SKU               string          `json:"sku"`
	OldPrice          decimal.Decimal `json:"old_price"`
	NewPrice          decimal.Decimal `json:"new_price"`
	Outcome           Outcome         `json:"outcome"`
	Reason            string          `json:"reason"`
	SupplierEntryID   int64           `json:"supplier_entry_id,omitempty"` // chosen supplier, 0 when none was selected
	DegradedSelection bool            `json:"degraded_selection,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Updated reports whether the decision resulted in a persisted change.
func (d *PricingDecision) Updated() bool {
	return d.Outcome == OutcomeUpdated
}

// PriceChangeRecord is the audit row written for every applied update.
type PriceChangeRecord struct {
	ProductID int64
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Reason    string
	Timestamp time.Time
}
