package engine

import (
	"sort"

	"github.com/wonny/pricesync/internal/contracts"
	"github.com/wonny/pricesync/pkg/logger"
)

// Selector picks one supplier from a product's quotes.
// ⭐ SSOT: 공급처 선택 정책은 여기서만
//
// Policy: in-stock quotes at or above the quality threshold, ordered
// by (unit cost ascending, quality descending). When nothing meets the
// threshold the filter relaxes to any in-stock quote and the selection
// is marked degraded.
type Selector struct {
	qualityThreshold int
	logger           *logger.Logger
}

// NewSelector creates a selector with the given quality threshold (0-100)
func NewSelector(qualityThreshold int, log *logger.Logger) *Selector {
	return &Selector{
		qualityThreshold: qualityThreshold,
		logger:           log.WithField("module", "selector"),
	}
}

// Select returns the chosen quote or ErrNoEligibleSupplier when no
// quote has stock.
func (s *Selector) Select(quotes []contracts.SupplierQuote) (*contracts.Selection, error) {
	candidates := filter(quotes, func(q contracts.SupplierQuote) bool {
		return q.InStock() && q.QualityScore >= s.qualityThreshold
	})

	degraded := false
	if len(candidates) == 0 {
		// Relax to in-stock only; quality ignored.
		candidates = filter(quotes, contracts.SupplierQuote.InStock)
		if len(candidates) == 0 {
			return nil, contracts.ErrNoEligibleSupplier
		}

		degraded = true
		s.logger.WithFields(map[string]interface{}{
			"quotes":    len(quotes),
			"threshold": s.qualityThreshold,
		}).Warn("Degraded selection: no supplier meets quality threshold")
	}

	// Lowest cost wins; ties broken by higher quality.
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].UnitCost.Equal(candidates[j].UnitCost) {
			return candidates[i].UnitCost.LessThan(candidates[j].UnitCost)
		}
		return candidates[i].QualityScore > candidates[j].QualityScore
	})

	return &contracts.Selection{
		Quote:    candidates[0],
		Degraded: degraded,
	}, nil
}

func filter(quotes []contracts.SupplierQuote, keep func(contracts.SupplierQuote) bool) []contracts.SupplierQuote {
	out := make([]contracts.SupplierQuote, 0, len(quotes))
	for _, q := range quotes {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}
