package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wonny/pricesync/internal/contracts"
)

// Recorder exposes sync pipeline metrics. It plugs into the engine as
// a decision sink and a cycle observer.
// ⭐ SSOT: Prometheus 메트릭 등록은 여기서만
type Recorder struct {
	decisionsTotal *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	cycleProducts  prometheus.Gauge
	degradedTotal  prometheus.Counter
}

// NewRecorder creates and registers the pipeline metrics
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricesync",
			Name:      "decisions_total",
			Help:      "Pricing decisions by outcome and reason",
		}, []string{"outcome", "reason"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pricesync",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full sync cycle",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		cycleProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pricesync",
			Name:      "cycle_products",
			Help:      "Products processed by the latest sync cycle",
		}),
		degradedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pricesync",
			Name:      "degraded_selections_total",
			Help:      "Supplier selections made below the quality threshold",
		}),
	}

	reg.MustRegister(r.decisionsTotal, r.cycleDuration, r.cycleProducts, r.degradedTotal)
	return r
}

// Publish implements contracts.DecisionSink
func (r *Recorder) Publish(decision *contracts.PricingDecision) {
	r.decisionsTotal.WithLabelValues(string(decision.Outcome), decision.Reason).Inc()
	if decision.DegradedSelection {
		r.degradedTotal.Inc()
	}
}

// ObserveCycle records cycle-level telemetry
func (r *Recorder) ObserveCycle(duration time.Duration, products int) {
	r.cycleDuration.Observe(duration.Seconds())
	r.cycleProducts.Set(float64(products))
}
