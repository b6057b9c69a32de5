package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/pricesync/internal/contracts"
)

// AuditRepository implements contracts.AuditRepository
// ⭐ SSOT: 가격 변경 이력/결정 저장소는 여기서만
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// RecordPriceChange appends one audit row per applied price update
func (r *AuditRepository) RecordPriceChange(ctx context.Context, record *contracts.PriceChangeRecord) error {
	query := `
		INSERT INTO audit.price_changes (product_id, old_price, new_price, reason, changed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ProductID, record.OldPrice, record.NewPrice, record.Reason, record.Timestamp,
	)
	return err
}

// SaveDecision persists one pipeline decision (updated or skipped)
func (r *AuditRepository) SaveDecision(ctx context.Context, decision *contracts.PricingDecision) error {
	query := `
		INSERT INTO audit.pricing_decisions
			(id, cycle_id, product_id, sku, old_price, new_price, outcome, reason, supplier_entry_id, degraded_selection, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		decision.ID, decision.CycleID, decision.ProductID, decision.SKU,
		decision.OldPrice, decision.NewPrice, string(decision.Outcome), decision.Reason,
		decision.SupplierEntryID, decision.DegradedSelection, decision.CreatedAt,
	)
	return err
}

// ListRecentDecisions retrieves the most recent decisions, newest first
func (r *AuditRepository) ListRecentDecisions(ctx context.Context, limit int) ([]contracts.PricingDecision, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, cycle_id, product_id, sku, old_price, new_price, outcome, reason, supplier_entry_id, degraded_selection, created_at
		FROM audit.pricing_decisions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []contracts.PricingDecision
	for rows.Next() {
		var d contracts.PricingDecision
		var outcome string
		if err := rows.Scan(
			&d.ID, &d.CycleID, &d.ProductID, &d.SKU, &d.OldPrice, &d.NewPrice,
			&outcome, &d.Reason, &d.SupplierEntryID, &d.DegradedSelection, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		d.Outcome = contracts.Outcome(outcome)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
