package catalog

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
)

// MemoryStore is an in-memory implementation of the catalog
// repositories. It backs tests and local development without Postgres;
// the engine cannot tell it apart from the pgx-backed repositories.
type MemoryStore struct {
	mu           sync.RWMutex
	products     map[int64]contracts.Product
	entries      map[int64]contracts.SupplierEntry
	snapshots    []contracts.SupplierSnapshot
	priceChanges []contracts.PriceChangeRecord
	decisions    []contracts.PricingDecision
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]contracts.Product),
		entries:  make(map[int64]contracts.SupplierEntry),
	}
}

// SeedProduct inserts or replaces a product
func (s *MemoryStore) SeedProduct(product contracts.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = product
}

// SeedEntry inserts or replaces a supplier entry
func (s *MemoryStore) SeedEntry(entry contracts.SupplierEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
}

// --- contracts.ProductRepository ---

func (s *MemoryStore) ListTracked(ctx context.Context) ([]contracts.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]contracts.Product, 0, len(s.products))
	for _, product := range s.products {
		products = append(products, product)
	}
	return products, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*contracts.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, contracts.ErrProductNotFound
	}
	return &product, nil
}

func (s *MemoryStore) UpdateSellingPrice(ctx context.Context, id int64, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return contracts.ErrProductNotFound
	}
	product.CurrentPrice = price
	s.products[id] = product
	return nil
}

// --- contracts.SupplierRepository ---

func (s *MemoryStore) GetEntry(ctx context.Context, id int64) (*contracts.SupplierEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, contracts.ErrEntryNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, snapshot *contracts.SupplierSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, *snapshot)
	return nil
}

// Snapshots returns all recorded snapshots (test helper)
func (s *MemoryStore) Snapshots() []contracts.SupplierSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contracts.SupplierSnapshot(nil), s.snapshots...)
}

// --- contracts.AuditRepository ---

func (s *MemoryStore) RecordPriceChange(ctx context.Context, record *contracts.PriceChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priceChanges = append(s.priceChanges, *record)
	return nil
}

func (s *MemoryStore) SaveDecision(ctx context.Context, decision *contracts.PricingDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, *decision)
	return nil
}

func (s *MemoryStore) ListRecentDecisions(ctx context.Context, limit int) ([]contracts.PricingDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.decisions) {
		limit = len(s.decisions)
	}
	// newest first
	recent := make([]contracts.PricingDecision, 0, limit)
	for i := len(s.decisions) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.decisions[i])
	}
	return recent, nil
}

// PriceChanges returns all recorded audit rows (test helper)
func (s *MemoryStore) PriceChanges() []contracts.PriceChangeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contracts.PriceChangeRecord(nil), s.priceChanges...)
}
