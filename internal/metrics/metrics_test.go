package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/pricesync/internal/contracts"
)

func TestRecorderPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Publish(&contracts.PricingDecision{
		Outcome: contracts.OutcomeUpdated,
		Reason:  contracts.ReasonAutoSync,
	})
	r.Publish(&contracts.PricingDecision{
		Outcome:           contracts.OutcomeSkipped,
		Reason:            contracts.SkipNoQuotes,
		DegradedSelection: true,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(
		r.decisionsTotal.WithLabelValues("updated", contracts.ReasonAutoSync)))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		r.decisionsTotal.WithLabelValues("skipped", contracts.SkipNoQuotes)))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.degradedTotal))
}

func TestRecorderObserveCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveCycle(3*time.Second, 120)
	assert.Equal(t, float64(120), testutil.ToFloat64(r.cycleProducts))
}
