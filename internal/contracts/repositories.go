package contracts

import (
	"context"

	"github.com/shopspring/decimal"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만
//
// The engine never depends on a concrete storage technology; the
// in-memory fake (internal/catalog/memory.go) and the Postgres
// implementation (internal/catalog) are interchangeable.

// ProductRepository manages tracked catalog products
type ProductRepository interface {
	ListTracked(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error
}

// SupplierRepository manages supplier entries and fetch snapshots
type SupplierRepository interface {
	GetEntry(ctx context.Context, id int64) (*SupplierEntry, error)
	SaveSnapshot(ctx context.Context, snapshot *SupplierSnapshot) error
}

// AuditRepository records price changes and pricing decisions
type AuditRepository interface {
	RecordPriceChange(ctx context.Context, record *PriceChangeRecord) error
	SaveDecision(ctx context.Context, decision *PricingDecision) error
	ListRecentDecisions(ctx context.Context, limit int) ([]PricingDecision, error)
}
