package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// ⭐ SSOT: 카탈로그 도메인 타입 정의는 여기서만

// Product is a tracked catalog product. The engine reads it and may
// request a selling-price update; everything else is owned by the
// catalog store.
type Product struct {
	ID              int64           `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	CurrentPrice    decimal.Decimal `json:"current_price"`    // current selling price
	MinimumMargin   decimal.Decimal `json:"minimum_margin"`   // required profit per unit, >= 0
	SupplierEntries []int64         `json:"supplier_entries"` // ordered supplier entry references
}

// SupplierEntry is static supplier configuration for one product
// source; never mutated by the engine.
type SupplierEntry struct {
	ID                int64
	SupplierID        int64
	Name              string
	SupplierProductID string // id used on the supplier's API
	QualityScore      int    // 0-100
	CredentialRef     string // opaque reference resolved to a bearer token
	BaseURL           string
}

// SupplierQuote is a price/stock observation for one entry in one
// sync cycle. Ephemeral; persistence happens via SupplierSnapshot.
type SupplierQuote struct {
	EntryID      int64
	SupplierName string
	UnitCost     decimal.Decimal
	Stock        int
	QualityScore int // copied from the entry
	FetchedAt    time.Time
}

// InStock reports whether the quote is eligible for selection at all.
func (q SupplierQuote) InStock() bool {
	return q.Stock > 0
}

// SupplierSnapshot is the persisted form of a quote (price/stock at
// this instant), written once per successful fetch.
type SupplierSnapshot struct {
	EntryID   int64
	Price     decimal.Decimal
	Stock     int
	FetchedAt time.Time
}

// CompetitorSample is a set of observed competitor prices for a SKU
// at a point in time.
type CompetitorSample struct {
	SKU        string
	Prices     []decimal.Decimal
	ObservedAt time.Time
}
