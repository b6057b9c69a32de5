package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/internal/engine"
	"github.com/wonny/pricesync/pkg/logger"
)

// SyncHandler handles sync trigger and decision history endpoints
// ⭐ SSOT: 동기화 API 핸들러는 이 구조체에서만
type SyncHandler struct {
	orchestrator *engine.Orchestrator
	audit        contracts.AuditRepository
	logger       *logger.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(orch *engine.Orchestrator, audit contracts.AuditRepository, log *logger.Logger) *SyncHandler {
	return &SyncHandler{
		orchestrator: orch,
		audit:        audit,
		logger:       log,
	}
}

// TriggerCycle starts a full sync cycle in the background
// POST /api/sync
func (h *SyncHandler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	// The cycle outlives the request; progress is observable through
	// the decision stream and /api/decisions.
	go func() {
		if _, err := h.orchestrator.RunCycle(context.Background()); err != nil {
			h.logger.WithError(err).Error("Triggered sync cycle failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "cycle started",
	})
}

// SyncProduct runs the pipeline for one product and returns its decision
// POST /api/products/{id}/sync
func (h *SyncHandler) SyncProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	decision, err := h.orchestrator.SyncOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, contracts.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Manual product sync failed")
		respondError(w, http.StatusInternalServerError, "Product sync failed")
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

// ListDecisions returns recent pricing decisions, newest first
// GET /api/decisions?limit=50
func (h *SyncHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			respondError(w, http.StatusBadRequest, "limit must be within 1-500")
			return
		}
		limit = parsed
	}

	decisions, err := h.audit.ListRecentDecisions(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list decisions")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve decisions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(decisions),
		"decisions": decisions,
	})
}
