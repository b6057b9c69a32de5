package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/logger"
)

// Orchestrator drives each product through the full pricing pipeline:
// collect → select → aggregate → enforce margin → gate → apply.
// ⭐ SSOT: 가격 동기화 파이프라인 조율은 여기서만
//
// Fault isolation is the batch's core guarantee: a failure (or panic)
// while processing one product is logged with the product id and the
// batch continues with the next product.
type Orchestrator struct {
	products    contracts.ProductRepository
	audit       contracts.AuditRepository
	collector   contracts.QuoteCollector
	selector    contracts.SupplierSelector
	aggregator  contracts.PriceAggregator
	margin      contracts.MarginEnforcer
	gate        contracts.ChangeGate
	competitors contracts.CompetitorSource

	// Optional collaborators
	store    contracts.StorePusher
	sinks    []contracts.DecisionSink
	observer CycleObserver

	config Config
	logger *logger.Logger
}

// Config holds orchestrator policy knobs
type Config struct {
	Workers          int             // products processed concurrently
	MarkupMultiplier decimal.Decimal // fallback when no competitor data
	SanityMultiplier decimal.Decimal // margin floor above current×multiplier is flagged
}

// CycleObserver receives cycle-level telemetry
type CycleObserver interface {
	ObserveCycle(duration time.Duration, products int)
}

// CycleResult summarizes one full sync cycle
type CycleResult struct {
	CycleID   string
	StartedAt time.Time
	Duration  time.Duration
	Total     int
	Updated   int
	Skipped   int
	Failed    int
	Decisions []contracts.PricingDecision
}

// NewOrchestrator creates a new sync orchestrator
func NewOrchestrator(
	products contracts.ProductRepository,
	audit contracts.AuditRepository,
	collector contracts.QuoteCollector,
	selector contracts.SupplierSelector,
	aggregator contracts.PriceAggregator,
	margin contracts.MarginEnforcer,
	gate contracts.ChangeGate,
	competitors contracts.CompetitorSource,
	config Config,
	log *logger.Logger,
) *Orchestrator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Orchestrator{
		products:    products,
		audit:       audit,
		collector:   collector,
		selector:    selector,
		aggregator:  aggregator,
		margin:      margin,
		gate:        gate,
		competitors: competitors,
		config:      config,
		logger:      log.WithField("module", "orchestrator"),
	}
}

// WithStorePusher enables pushing applied prices to the external store
func (o *Orchestrator) WithStorePusher(pusher contracts.StorePusher) *Orchestrator {
	o.store = pusher
	return o
}

// WithSink registers a decision sink (stream, metrics)
func (o *Orchestrator) WithSink(sink contracts.DecisionSink) *Orchestrator {
	o.sinks = append(o.sinks, sink)
	return o
}

// WithCycleObserver registers cycle-level telemetry
func (o *Orchestrator) WithCycleObserver(observer CycleObserver) *Orchestrator {
	o.observer = observer
	return o
}

// RunCycle processes every tracked product once. Products run on a
// bounded worker pool; they share no mutable state. Only a repository
// failure listing products is returned as an error; per-product
// failures are contained.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	startTime := time.Now()
	cycleID := fmt.Sprintf("cycle_%s", uuid.NewString())

	products, err := o.products.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked products: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"cycle_id": cycleID,
		"products": len(products),
		"workers":  o.config.Workers,
	}).Info("Starting sync cycle")

	result := &CycleResult{
		CycleID:   cycleID,
		StartedAt: startTime,
		Total:     len(products),
		Decisions: make([]contracts.PricingDecision, 0, len(products)),
	}

	productCh := make(chan contracts.Product, len(products))
	decisionCh := make(chan *contracts.PricingDecision, len(products))
	failureCh := make(chan int64, len(products))

	var wg sync.WaitGroup
	for i := 0; i < o.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.worker(ctx, cycleID, productCh, decisionCh, failureCh)
		}()
	}

	for _, product := range products {
		productCh <- product
	}
	close(productCh)

	go func() {
		wg.Wait()
		close(decisionCh)
		close(failureCh)
	}()

	for decision := range decisionCh {
		result.Decisions = append(result.Decisions, *decision)
		if decision.Updated() {
			result.Updated++
		} else {
			result.Skipped++
		}
	}
	for range failureCh {
		result.Failed++
	}

	result.Duration = time.Since(startTime)

	if o.observer != nil {
		o.observer.ObserveCycle(result.Duration, result.Total)
	}

	o.logger.WithFields(map[string]interface{}{
		"cycle_id": cycleID,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
		"duration": result.Duration.Seconds(),
	}).Info("Sync cycle completed")

	return result, nil
}

// SyncOne runs the pipeline for a single product id (CLI / API trigger)
func (o *Orchestrator) SyncOne(ctx context.Context, productID int64) (*contracts.PricingDecision, error) {
	product, err := o.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}

	cycleID := fmt.Sprintf("manual_%s", uuid.NewString())
	decision, err := o.syncProduct(ctx, cycleID, *product)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// worker drains the product channel. Cancellation is honored between
// products: a product already inside its pipeline finishes (or fails)
// cleanly rather than being interrupted mid-update.
func (o *Orchestrator) worker(
	ctx context.Context,
	cycleID string,
	products <-chan contracts.Product,
	decisions chan<- *contracts.PricingDecision,
	failures chan<- int64,
) {
	for product := range products {
		if ctx.Err() != nil {
			o.logger.WithFields(map[string]interface{}{
				"cycle_id":   cycleID,
				"product_id": product.ID,
			}).Warn("Cycle cancelled; product not started")
			continue
		}

		decision, err := o.syncProductSafe(ctx, cycleID, product)
		if err != nil {
			o.logger.WithFields(map[string]interface{}{
				"cycle_id":   cycleID,
				"product_id": product.ID,
				"error":      err.Error(),
			}).Error("Product sync failed; continuing batch")
			failures <- product.ID
			continue
		}
		decisions <- decision
	}
}

// syncProductSafe wraps syncProduct with panic recovery, the
// orchestrator boundary where unhandled product errors are contained.
func (o *Orchestrator) syncProductSafe(ctx context.Context, cycleID string, product contracts.Product) (decision *contracts.PricingDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = nil
			err = fmt.Errorf("unhandled error syncing product %d: %v", product.ID, r)
		}
	}()

	// Once a product starts, it runs to completion even if the cycle is
	// cancelled; every external call below carries its own timeout.
	return o.syncProduct(context.WithoutCancel(ctx), cycleID, product)
}

// syncProduct runs the per-product state machine:
// START → QUOTES_COLLECTED → SUPPLIER_CHOSEN → TARGET_COMPUTED
//       → MARGIN_APPLIED → {UPDATED | SKIPPED(reason)}
func (o *Orchestrator) syncProduct(ctx context.Context, cycleID string, product contracts.Product) (*contracts.PricingDecision, error) {
	log := o.logger.WithFields(map[string]interface{}{
		"cycle_id":   cycleID,
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	log.WithField("stage", contracts.StageStart.String()).Debug("Syncing product")

	quotes, err := o.collector.Collect(ctx, &product)
	if err != nil {
		return nil, fmt.Errorf("collect quotes: %w", err)
	}
	if len(quotes) == 0 {
		log.Warn("No supplier quotes; skipping product")
		return o.finishSkipped(ctx, cycleID, product, contracts.SkipNoQuotes, nil)
	}
	log.WithFields(map[string]interface{}{
		"stage":  contracts.StageQuotesCollected.String(),
		"quotes": len(quotes),
	}).Debug("Quotes collected")

	selection, err := o.selector.Select(quotes)
	if err != nil {
		log.Warn("No eligible supplier; skipping product")
		return o.finishSkipped(ctx, cycleID, product, contracts.SkipNoEligibleSupplier, nil)
	}
	chosen := selection.Quote
	log.WithFields(map[string]interface{}{
		"stage":     contracts.StageSupplierChosen.String(),
		"entry_id":  chosen.EntryID,
		"unit_cost": chosen.UnitCost.String(),
		"stock":     chosen.Stock,
		"degraded":  selection.Degraded,
	}).Info("Supplier chosen")

	// Undercut first; the margin floor wins later.
	target, err := o.computeTarget(ctx, product.SKU, chosen.UnitCost)
	if err != nil {
		return nil, fmt.Errorf("compute target price: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"stage":  contracts.StageTargetComputed.String(),
		"target": target.String(),
	}).Debug("Target price computed")

	finalPrice := o.margin.Apply(target, chosen.UnitCost, product.MinimumMargin)
	log.WithFields(map[string]interface{}{
		"stage": contracts.StageMarginApplied.String(),
		"price": finalPrice.String(),
	}).Debug("Margin floor applied")

	// A floor far above the current price means the supplier cost or
	// margin data is suspect; skip instead of applying the jump.
	if o.floorExceedsSanity(target, finalPrice, chosen.UnitCost, product) {
		log.WithFields(map[string]interface{}{
			"floor":         Floor(chosen.UnitCost, product.MinimumMargin).String(),
			"current_price": product.CurrentPrice.String(),
		}).Warn("Margin floor exceeds sanity ceiling; flagged for review")
		return o.finishSkipped(ctx, cycleID, product, contracts.SkipMarginFloorSanity, &selection.Quote)
	}

	// Gate
	verdict := o.gate.Evaluate(product.CurrentPrice, finalPrice)
	if !verdict.Approved {
		log.WithFields(map[string]interface{}{
			"old_price": product.CurrentPrice.String(),
			"new_price": finalPrice.String(),
			"delta":     verdict.Delta.String(),
		}).Debug("No meaningful price change")
		return o.finishSkipped(ctx, cycleID, product, verdict.Reason, &selection.Quote)
	}

	if err := o.applyUpdate(ctx, product, finalPrice, verdict.Reason); err != nil {
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"stage":     contracts.StageUpdated.String(),
		"old_price": product.CurrentPrice.String(),
		"new_price": finalPrice.String(),
		"reason":    verdict.Reason,
	}).Info("Price updated")

	decision := &contracts.PricingDecision{
		ID:                uuid.NewString(),
		CycleID:           cycleID,
		ProductID:         product.ID,
		SKU:               product.SKU,
		OldPrice:          product.CurrentPrice,
		NewPrice:          finalPrice,
		Outcome:           contracts.OutcomeUpdated,
		Reason:            verdict.Reason,
		SupplierEntryID:   chosen.EntryID,
		DegradedSelection: selection.Degraded,
		CreatedAt:         time.Now(),
	}
	o.recordDecision(ctx, decision)
	return decision, nil
}

// computeTarget applies the undercut policy, falling back to a cost
// markup when the competitor source has nothing for the SKU.
func (o *Orchestrator) computeTarget(ctx context.Context, sku string, unitCost decimal.Decimal) (decimal.Decimal, error) {
	prices, err := o.competitors.FetchPrices(ctx, sku)
	if err != nil {
		// Source failure is treated like absence of data.
		o.logger.WithFields(map[string]interface{}{
			"sku":   sku,
			"error": err.Error(),
		}).Warn("Competitor source failed; using markup fallback")
		prices = nil
	}

	target, err := o.aggregator.Target(prices)
	if err == nil {
		return target, nil
	}

	o.logger.WithField("sku", sku).Info("No competitor prices; using supplier cost markup fallback")
	return MarkupFallback(unitCost, o.config.MarkupMultiplier), nil
}

// floorExceedsSanity reports whether the margin floor was engaged and
// implies an implausible jump over the current price. Products without
// a current price (new listings) are exempt.
func (o *Orchestrator) floorExceedsSanity(target, finalPrice, unitCost decimal.Decimal, product contracts.Product) bool {
	floor := Floor(unitCost, product.MinimumMargin)
	if target.GreaterThanOrEqual(floor) {
		return false // floor never engaged
	}
	if !product.CurrentPrice.IsPositive() {
		return false
	}
	ceiling := product.CurrentPrice.Mul(o.config.SanityMultiplier)
	return finalPrice.GreaterThan(ceiling)
}

// applyUpdate persists the new price, writes the audit record, and
// pushes to the store. The store push is best effort: its failure is
// logged and never rolls back the already-committed catalog update.
func (o *Orchestrator) applyUpdate(ctx context.Context, product contracts.Product, newPrice decimal.Decimal, reason string) error {
	if err := o.products.UpdateSellingPrice(ctx, product.ID, newPrice); err != nil {
		return fmt.Errorf("update selling price: %w", err)
	}

	record := &contracts.PriceChangeRecord{
		ProductID: product.ID,
		OldPrice:  product.CurrentPrice,
		NewPrice:  newPrice,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	if err := o.audit.RecordPriceChange(ctx, record); err != nil {
		return fmt.Errorf("record price change: %w", err)
	}

	if o.store != nil {
		if err := o.store.PushPrice(ctx, product.ID, newPrice); err != nil {
			o.logger.WithFields(map[string]interface{}{
				"product_id": product.ID,
				"error":      err.Error(),
			}).Error("Store push failed; catalog update stands")
		}
	}

	return nil
}

// finishSkipped builds, records and publishes a skipped decision.
func (o *Orchestrator) finishSkipped(ctx context.Context, cycleID string, product contracts.Product, reason string, chosen *contracts.SupplierQuote) (*contracts.PricingDecision, error) {
	o.logger.WithFields(map[string]interface{}{
		"cycle_id":   cycleID,
		"product_id": product.ID,
		"stage":      contracts.StageSkipped.String(),
		"reason":     reason,
	}).Debug("Product skipped")

	decision := &contracts.PricingDecision{
		ID:        uuid.NewString(),
		CycleID:   cycleID,
		ProductID: product.ID,
		SKU:       product.SKU,
		OldPrice:  product.CurrentPrice,
		NewPrice:  product.CurrentPrice,
		Outcome:   contracts.OutcomeSkipped,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if chosen != nil {
		decision.SupplierEntryID = chosen.EntryID
	}
	o.recordDecision(ctx, decision)
	return decision, nil
}

// recordDecision persists the decision and fans it out to sinks.
func (o *Orchestrator) recordDecision(ctx context.Context, decision *contracts.PricingDecision) {
	if err := o.audit.SaveDecision(ctx, decision); err != nil {
		o.logger.WithFields(map[string]interface{}{
			"product_id": decision.ProductID,
			"error":      err.Error(),
		}).Error("Decision not persisted")
	}

	for _, sink := range o.sinks {
		sink.Publish(decision)
	}
}
