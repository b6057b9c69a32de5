package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pricesync/internal/catalog"
	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/logger"
)

type orchestratorFixture struct {
	store       *catalog.MemoryStore
	gateway     *fakeGateway
	competitors *fakeCompetitors
	pusher      *fakePusher
	sink        *recordingSink
	orch        *Orchestrator
}

func newFixture(t *testing.T, gateway *fakeGateway, competitors *fakeCompetitors) *orchestratorFixture {
	t.Helper()

	store := catalog.NewMemoryStore()
	pusher := &fakePusher{}
	sink := &recordingSink{}
	log := logger.NewNop()

	orch := NewOrchestrator(
		store, store,
		NewCollector(store, gateway, NewStaticResolver(map[string]string{"alpha": "token-a"}), log),
		NewSelector(70, log),
		NewAggregator(),
		NewMargin(),
		NewGate(d("0.05")),
		competitors,
		Config{
			Workers:          2,
			MarkupMultiplier: d("2.50"),
			SanityMultiplier: d("3.0"),
		},
		log,
	).WithStorePusher(pusher).WithSink(sink)

	return &orchestratorFixture{
		store:       store,
		gateway:     gateway,
		competitors: competitors,
		pusher:      pusher,
		sink:        sink,
		orch:        orch,
	}
}

func (f *orchestratorFixture) seedProduct(id int64, sku, currentPrice, minimumMargin string, entries ...int64) {
	f.store.SeedProduct(contracts.Product{
		ID:              id,
		SKU:             sku,
		Name:            "test product",
		CurrentPrice:    d(currentPrice),
		MinimumMargin:   d(minimumMargin),
		SupplierEntries: entries,
	})
	for _, entryID := range entries {
		f.store.SeedEntry(contracts.SupplierEntry{
			ID:                entryID,
			SupplierID:        entryID,
			Name:              "supplier",
			SupplierProductID: "SP-1",
			QualityScore:      85,
			CredentialRef:     "alpha",
			BaseURL:           "https://supplier.example.com",
		})
	}
}

func TestRunCycleUpdatesPrice(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "5.10", 40, 90),
			2: quote(2, "4.80", 120, 85),
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1, 2)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, result.Decisions, 1)
	decision := result.Decisions[0]
	assert.Equal(t, contracts.OutcomeUpdated, decision.Outcome)
	assert.Equal(t, contracts.ReasonAutoSync, decision.Reason)
	assert.Equal(t, int64(2), decision.SupplierEntryID)
	assert.True(t, decision.OldPrice.Equal(d("19.60")))
	assert.True(t, decision.NewPrice.Equal(d("20.02")), "got %s", decision.NewPrice)
	assert.False(t, decision.DegradedSelection)

	// catalog updated
	product, err := f.store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, product.CurrentPrice.Equal(d("20.02")))

	// audit row written
	changes := f.store.PriceChanges()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].OldPrice.Equal(d("19.60")))
	assert.True(t, changes[0].NewPrice.Equal(d("20.02")))
	assert.Equal(t, contracts.ReasonAutoSync, changes[0].Reason)

	// store push + stream fan-out
	pushes := f.pusher.calls()
	require.Len(t, pushes, 1)
	assert.Equal(t, int64(42), pushes[0].productID)
	assert.True(t, pushes[0].price.Equal(d("20.02")))
	assert.Len(t, f.sink.all(), 1)
}

func TestRunCycleIdempotent(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	first, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	// identical inputs: the second run detects no meaningful change
	second, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Skipped)
	require.Len(t, second.Decisions, 1)
	assert.Equal(t, contracts.SkipBelowChangeThreshold, second.Decisions[0].Reason)

	assert.Len(t, f.pusher.calls(), 1, "no second store push")
	assert.Len(t, f.store.PriceChanges(), 1, "no second audit row")
}

func TestRunCycleNoQuotes(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{errs: map[int64]error{1: contracts.ErrSupplierFetchFailed}},
		&fakeCompetitors{},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, contracts.OutcomeSkipped, result.Decisions[0].Outcome)
	assert.Equal(t, contracts.SkipNoQuotes, result.Decisions[0].Reason)
	assert.Empty(t, f.pusher.calls())
	assert.Empty(t, f.store.PriceChanges())
}

func TestRunCycleNoEligibleSupplier(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 0, 90), // out of stock
		}},
		&fakeCompetitors{},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	assert.Equal(t, contracts.SkipNoEligibleSupplier, result.Decisions[0].Reason)
}

func TestRunCycleMarkupFallback(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{}, // no prices for any SKU
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	// 4.80 × 2.50 = 12.00; above the floor 9.80, change 7.60 passes the gate
	require.Len(t, result.Decisions, 1)
	decision := result.Decisions[0]
	assert.Equal(t, contracts.OutcomeUpdated, decision.Outcome)
	assert.True(t, decision.NewPrice.Equal(d("12.00")), "got %s", decision.NewPrice)
}

func TestRunCycleCompetitorSourceFailure(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{err: assert.AnError},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	// source failure degrades to the markup fallback, not a batch failure
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Decisions, 1)
	assert.True(t, result.Decisions[0].NewPrice.Equal(d("12.00")))
}

func TestRunCycleMarginFloorSanity(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "18.00", 50, 90),
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	// floor 23.00 is far beyond current 1.00 × 3.0
	f.seedProduct(42, "SKU-1", "1.00", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	decision := result.Decisions[0]
	assert.Equal(t, contracts.OutcomeSkipped, decision.Outcome)
	assert.Equal(t, contracts.SkipMarginFloorSanity, decision.Reason)
	assert.Empty(t, f.pusher.calls())

	// current price untouched
	product, err := f.store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, product.CurrentPrice.Equal(d("1.00")))
}

func TestRunCycleDegradedSelectionFlagged(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 40), // below the quality threshold
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	assert.True(t, result.Decisions[0].DegradedSelection)
	assert.Equal(t, contracts.OutcomeUpdated, result.Decisions[0].Outcome)
}

func TestRunCyclePanicIsolated(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{
			quotes:  map[int64]contracts.SupplierQuote{2: quote(2, "4.80", 120, 85)},
			panicOn: map[int64]bool{1: true},
		},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-2": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(7, "SKU-7", "10.00", "1.00", 1)
	f.seedProduct(8, "SKU-2", "19.60", "5.00", 2)

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	// product 7 blew up inside its pipeline; product 8 still updated
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Updated)
}

func TestRunCycleCancelledContext(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.orch.RunCycle(ctx)
	require.NoError(t, err)

	// products are not started once the cycle is cancelled
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Decisions)
	assert.Empty(t, f.pusher.calls())
}

func TestSyncOne(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)

	decision, err := f.orch.SyncOne(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, contracts.OutcomeUpdated, decision.Outcome)
	assert.True(t, decision.NewPrice.Equal(d("20.02")))

	_, err = f.orch.SyncOne(context.Background(), 999)
	require.Error(t, err)
}

func TestRunCycleStorePushFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t,
		&fakeGateway{quotes: map[int64]contracts.SupplierQuote{
			1: quote(1, "4.80", 120, 85),
		}},
		&fakeCompetitors{prices: map[string][]decimal.Decimal{
			"SKU-1": {d("20.00"), d("21.50"), d("19.80")},
		}},
	)
	f.seedProduct(42, "SKU-1", "19.60", "5.00", 1)
	f.pusher.err = contracts.ErrStorePushFailed

	result, err := f.orch.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	product, err := f.store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, product.CurrentPrice.Equal(d("20.02")), "catalog update stands despite push failure")
}
