package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons used as label values on the rejected-orders counter
const (
	ReasonInsufficientStock  = "insufficient_stock"
	ReasonUnitIncompatible   = "unit_incompatible"
	ReasonIngredientNotFound = "ingredient_not_found"
	ReasonTransientFailure   = "transient_failure"
	ReasonInvalidRequest     = "invalid_request"
)

// Collector handles metrics collection and reporting for the POS engine
type Collector struct {
	registry *prometheus.Registry

	ordersPlaced        prometheus.Counter
	ordersRejected      *prometheus.CounterVec
	consumptionDuration prometheus.Histogram
	txConflicts         prometheus.Counter
	lowStockGauge       prometheus.Gauge
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_placed_total",
		Help: "Orders whose stock consumption committed",
	})

	ordersRejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_orders_rejected_total",
			Help: "Orders rejected before or during stock consumption",
		},
		[]string{"reason"},
	)

	consumptionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_consumption_duration_seconds",
		Help:    "Wall time of the consumption transaction, retries included",
		Buckets: prometheus.DefBuckets,
	})

	txConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_store_tx_conflicts_total",
		Help: "Optimistic transaction attempts lost to a concurrent commit",
	})

	lowStockGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pos_low_stock_ingredients",
		Help: "Ingredients currently at or below their restock threshold",
	})

	registry.MustRegister(ordersPlaced, ordersRejected, consumptionDuration, txConflicts, lowStockGauge)

	return &Collector{
		registry:            registry,
		ordersPlaced:        ordersPlaced,
		ordersRejected:      ordersRejected,
		consumptionDuration: consumptionDuration,
		txConflicts:         txConflicts,
		lowStockGauge:       lowStockGauge,
	}
}

// Handler returns the HTTP handler serving this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordOrderPlaced increments the placed-orders counter
func (c *Collector) RecordOrderPlaced() {
	if c == nil {
		return
	}
	c.ordersPlaced.Inc()
}

// RecordOrderRejected increments the rejection counter for a reason
func (c *Collector) RecordOrderRejected(reason string) {
	if c == nil {
		return
	}
	c.ordersRejected.WithLabelValues(reason).Inc()
}

// ObserveConsumption records the duration of one consumption attempt
func (c *Collector) ObserveConsumption(d time.Duration) {
	if c == nil {
		return
	}
	c.consumptionDuration.Observe(d.Seconds())
}

// RecordTxConflict counts one lost optimistic commit
func (c *Collector) RecordTxConflict() {
	if c == nil {
		return
	}
	c.txConflicts.Inc()
}

// SetLowStockCount updates the low-stock gauge
func (c *Collector) SetLowStockCount(n int) {
	if c == nil {
		return
	}
	c.lowStockGauge.Set(float64(n))
}
