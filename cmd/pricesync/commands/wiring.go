package commands

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/pricesync/internal/api"
	"github.com/wonny/pricesync/internal/catalog"
	"github.com/wonny/pricesync/internal/engine"
	"github.com/wonny/pricesync/internal/external/serp"
	"github.com/wonny/pricesync/internal/external/store"
	"github.com/wonny/pricesync/internal/external/supplier"
	"github.com/wonny/pricesync/internal/metrics"
	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/database"
	"github.com/wonny/pricesync/pkg/logger"
	"github.com/wonny/pricesync/pkg/redis"
)

// components holds the wired dependency graph shared by the api, sync
// and scheduler commands.
// ⭐ SSOT: 의존성 조립은 여기서만
type components struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	products *catalog.ProductRepository
	audit    *catalog.AuditRepository

	orchestrator *engine.Orchestrator
	hub          *api.Hub
	registry     *prometheus.Registry
}

// buildComponents loads config and wires the full pipeline
func buildComponents() (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Repositories
	products := catalog.NewProductRepository(db.Pool)
	suppliers := catalog.NewSupplierRepository(db.Pool)
	audit := catalog.NewAuditRepository(db.Pool)

	// External clients
	supplierClient := supplier.NewClient(cfg, log)
	if cfg.Supplier.RateLimit > 0 && redisClient.Enabled() {
		limiter := redis.NewRateLimiter(redisClient, "pricesync")
		supplierClient.WithRateLimiter(limiter, redis.SupplierRateLimit(
			"all", cfg.Supplier.RateLimit, cfg.Supplier.RateWindow))
	}

	serpCache := redis.NewCache(redisClient, "pricesync")
	competitors := serp.NewClient(cfg, serpCache, log)

	// Engine
	resolver := engine.NewStaticResolver(cfg.Supplier.Credentials)
	orchestrator := engine.NewOrchestrator(
		products, audit,
		engine.NewCollector(suppliers, supplierClient, resolver, log),
		engine.NewSelector(cfg.Pricing.QualityThreshold, log),
		engine.NewAggregator(),
		engine.NewMargin(),
		engine.NewGate(cfg.Pricing.ChangeThreshold),
		competitors,
		engine.Config{
			Workers:          cfg.Pricing.Workers,
			MarkupMultiplier: cfg.Pricing.MarkupMultiplier,
			SanityMultiplier: cfg.Pricing.SanityMultiplier,
		},
		log,
	)

	if cfg.StoreConfigured() {
		orchestrator.WithStorePusher(store.NewClient(cfg, log))
	} else {
		log.Warn("Store push not configured; price updates stay in the catalog")
	}

	hub := api.NewHub(log)
	orchestrator.WithSink(hub)

	c := &components{
		cfg:          cfg,
		log:          log,
		db:           db,
		redis:        redisClient,
		products:     products,
		audit:        audit,
		orchestrator: orchestrator,
		hub:          hub,
	}

	if cfg.MetricsEnabled {
		c.registry = prometheus.NewRegistry()
		recorder := metrics.NewRecorder(c.registry)
		orchestrator.WithSink(recorder)
		orchestrator.WithCycleObserver(recorder)
	}

	return c, nil
}

// Close releases all connections
func (c *components) Close() {
	c.db.Close()
	if err := c.redis.Close(); err != nil {
		c.log.WithError(err).Warn("Redis close failed")
	}
}
