package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
)

// ProductRepository implements contracts.ProductRepository
// ⭐ SSOT: 상품 카탈로그 저장소는 여기서만
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new product repository
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListTracked retrieves all products enrolled in price sync, with
// their supplier entry ids aggregated.
func (r *ProductRepository) ListTracked(ctx context.Context) ([]contracts.Product, error) {
	query := `
		SELECT
			p.id, p.sku, p.name, p.current_price, p.minimum_margin,
			COALESCE(array_agg(e.id ORDER BY e.id) FILTER (WHERE e.id IS NOT NULL), '{}') AS entry_ids
		FROM catalog.products p
		LEFT JOIN catalog.supplier_entries e ON e.product_id = p.id
		WHERE p.sync_enabled = true
		GROUP BY p.id
		ORDER BY p.id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []contracts.Product
	for rows.Next() {
		var p contracts.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.CurrentPrice, &p.MinimumMargin, &p.SupplierEntries); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetByID retrieves a single product by id
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*contracts.Product, error) {
	query := `
		SELECT
			p.id, p.sku, p.name, p.current_price, p.minimum_margin,
			COALESCE(array_agg(e.id ORDER BY e.id) FILTER (WHERE e.id IS NOT NULL), '{}') AS entry_ids
		FROM catalog.products p
		LEFT JOIN catalog.supplier_entries e ON e.product_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`

	var p contracts.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.CurrentPrice, &p.MinimumMargin, &p.SupplierEntries,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateSellingPrice persists a new selling price for a product
func (r *ProductRepository) UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	query := `
		UPDATE catalog.products
		SET current_price = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrProductNotFound
	}
	return nil
}
