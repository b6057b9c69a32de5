package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/pricesync/internal/contracts"
)

// SupplierRepository implements contracts.SupplierRepository
// ⭐ SSOT: 공급처 엔트리/스냅샷 저장소는 여기서만
type SupplierRepository struct {
	pool *pgxpool.Pool
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

// GetEntry retrieves a supplier entry by id
func (r *SupplierRepository) GetEntry(ctx context.Context, id int64) (*contracts.SupplierEntry, error) {
	query := `
		SELECT e.id, e.supplier_id, s.name, e.supplier_product_id, s.quality_score, s.credential_ref, s.base_url
		FROM catalog.supplier_entries e
		JOIN catalog.suppliers s ON s.id = e.supplier_id
		WHERE e.id = $1
	`

	var e contracts.SupplierEntry
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.SupplierID, &e.Name, &e.SupplierProductID, &e.QualityScore, &e.CredentialRef, &e.BaseURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

// SaveSnapshot records the latest observed price and stock for an
// entry. One row per entry, newest observation wins.
func (r *SupplierRepository) SaveSnapshot(ctx context.Context, snapshot *contracts.SupplierSnapshot) error {
	query := `
		INSERT INTO catalog.supplier_snapshots (entry_id, price, stock, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entry_id) DO UPDATE SET
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.pool.Exec(ctx, query,
		snapshot.EntryID, snapshot.Price, snapshot.Stock, snapshot.FetchedAt,
	)
	return err
}
