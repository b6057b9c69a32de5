package redis

import (
	"context"
	"testing"
	"time"

	"github.com/wonny/pricesync/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	client := Disabled()
	limiter := NewRateLimiter(client, "test")

	cfg := SupplierRateLimit("alpha", 5, time.Second)

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != cfg.Limit {
		t.Errorf("Expected remaining = %d, got %d", cfg.Limit, remaining)
	}
}

func TestCache_Disabled(t *testing.T) {
	client := Disabled()
	cache := NewCache(client, "test")

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(context.Background(), "key", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestSupplierRateLimit(t *testing.T) {
	cfg := SupplierRateLimit("beta", 10, time.Minute)
	if cfg.Key != "supplier:beta" {
		t.Errorf("Expected key supplier:beta, got %s", cfg.Key)
	}
	if cfg.Limit != 10 {
		t.Errorf("Expected limit 10, got %d", cfg.Limit)
	}
}
