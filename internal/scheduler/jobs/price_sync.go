package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/pricesync/internal/engine"
	"github.com/wonny/pricesync/pkg/config"
	"github.com/wonny/pricesync/pkg/logger"
)

// PriceSyncJob runs the full price sync cycle on a schedule
// ⭐ SSOT: 가격 동기화 스케줄은 이 Job에서만
type PriceSyncJob struct {
	orchestrator *engine.Orchestrator
	config       *config.Config
	logger       *logger.Logger
}

// NewPriceSyncJob creates a new price sync job
func NewPriceSyncJob(orch *engine.Orchestrator, cfg *config.Config, log *logger.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		orchestrator: orch,
		config:       cfg,
		logger:       log,
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Schedule returns the cron schedule expression
func (j *PriceSyncJob) Schedule() string {
	return j.config.Pricing.SyncSchedule
}

// Run executes one sync cycle
func (j *PriceSyncJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled price sync")

	result, err := j.orchestrator.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("run sync cycle: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cycle_id": result.CycleID,
		"total":    result.Total,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("Scheduled price sync completed")

	return nil
}
