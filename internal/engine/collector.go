package engine

import (
	"context"
	"errors"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/logger"
)

// Collector resolves a product's supplier entry references into live
// quotes. One supplier's failure never aborts collection for the rest.
// ⭐ SSOT: 견적 수집은 여기서만
type Collector struct {
	suppliers   contracts.SupplierRepository
	gateway     contracts.SupplierGateway
	credentials contracts.CredentialResolver
	logger      *logger.Logger
}

// NewCollector creates a new quote collector
func NewCollector(
	suppliers contracts.SupplierRepository,
	gateway contracts.SupplierGateway,
	credentials contracts.CredentialResolver,
	log *logger.Logger,
) *Collector {
	return &Collector{
		suppliers:   suppliers,
		gateway:     gateway,
		credentials: credentials,
		logger:      log.WithField("module", "collector"),
	}
}

// Collect fetches a quote for each supplier entry of the product.
// Failed entries are skipped with a warning; the returned slice may be
// empty. Each successful quote is persisted as a supplier snapshot.
func (c *Collector) Collect(ctx context.Context, product *contracts.Product) ([]contracts.SupplierQuote, error) {
	quotes := make([]contracts.SupplierQuote, 0, len(product.SupplierEntries))

	for _, entryID := range product.SupplierEntries {
		quote, err := c.collectEntry(ctx, entryID)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"product_id": product.ID,
				"entry_id":   entryID,
				"error":      err.Error(),
			}).Warn("Supplier entry skipped")
			continue
		}
		quotes = append(quotes, *quote)
	}

	c.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"entries":    len(product.SupplierEntries),
		"quotes":     len(quotes),
	}).Debug("Quote collection completed")

	return quotes, nil
}

// collectEntry fetches and persists one entry's quote
func (c *Collector) collectEntry(ctx context.Context, entryID int64) (*contracts.SupplierQuote, error) {
	entry, err := c.suppliers.GetEntry(ctx, entryID)
	if err != nil {
		return nil, errors.Join(contracts.ErrSupplierFetchFailed, err)
	}

	token, err := c.credentials.Resolve(entry.CredentialRef)
	if err != nil {
		return nil, err
	}

	quote, err := c.gateway.FetchQuote(ctx, entry, token)
	if err != nil {
		return nil, errors.Join(contracts.ErrSupplierFetchFailed, err)
	}

	// Persist the observation; a snapshot failure only loses history,
	// the quote itself is still usable this cycle.
	snapshot := &contracts.SupplierSnapshot{
		EntryID:   entry.ID,
		Price:     quote.UnitCost,
		Stock:     quote.Stock,
		FetchedAt: quote.FetchedAt,
	}
	if err := c.suppliers.SaveSnapshot(ctx, snapshot); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"entry_id": entry.ID,
			"error":    err.Error(),
		}).Warn("Supplier snapshot not persisted")
	}

	return quote, nil
}

// StaticResolver resolves credentials from a fixed map, built once per
// process from configuration. Tests inject their own maps; nothing in
// the engine reads the environment.
type StaticResolver struct {
	tokens map[string]string
}

// NewStaticResolver creates a resolver over the given reference → token map
func NewStaticResolver(tokens map[string]string) *StaticResolver {
	return &StaticResolver{tokens: tokens}
}

// Resolve returns the bearer token for a credential reference
func (r *StaticResolver) Resolve(ref string) (string, error) {
	token, ok := r.tokens[ref]
	if !ok || token == "" {
		return "", contracts.ErrMissingCredential
	}
	return token, nil
}
