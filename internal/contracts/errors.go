package contracts

import "errors"

// ⭐ SSOT: 엔진 에러 종류는 여기서만 정의
//
// Every kind below is recoverable at some scope; none is permitted to
// terminate a batch. Only configuration-level failures (bad config,
// unreachable repository at startup) are fatal, and those surface as
// ordinary wrapped errors from the entry points.
var (
	// ErrSupplierFetchFailed wraps a per-entry quote failure; the entry
	// is skipped and collection continues.
	ErrSupplierFetchFailed = errors.New("supplier fetch failed")

	// ErrMissingCredential means the entry's credential reference is not
	// configured. Treated as a fetch failure, not fatal to the batch.
	ErrMissingCredential = errors.New("supplier credential not configured")

	// ErrNoEligibleSupplier means no in-stock supplier exists for the
	// product; its cycle is skipped.
	ErrNoEligibleSupplier = errors.New("no eligible supplier")

	// ErrNoCompetitorData means the competitor source returned nothing;
	// the orchestrator falls back to a cost markup.
	ErrNoCompetitorData = errors.New("no competitor data")

	// ErrStorePushFailed is logged only; the catalog update it follows
	// is never rolled back.
	ErrStorePushFailed = errors.New("store push failed")

	// ErrProductNotFound / ErrEntryNotFound are repository lookups for
	// ids that do not exist.
	ErrProductNotFound = errors.New("product not found")
	ErrEntryNotFound   = errors.New("supplier entry not found")
)
