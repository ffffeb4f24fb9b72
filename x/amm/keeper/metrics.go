package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the module's Prometheus metrics.
type Metrics struct {
	SwapsTotal   *prometheus.CounterVec
	SwapVolume   *prometheus.CounterVec
	SwapLatency  prometheus.Histogram
	PriceImpact  prometheus.Histogram

	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	PoolsTotal       prometheus.Gauge

	CrossChainSent     *prometheus.CounterVec
	CrossChainReceived *prometheus.CounterVec
	CrossChainFailed   *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics creates and registers the module metrics (singleton).
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "token_in", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pool_id", "token_in"},
			),
			SwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "swap_latency_seconds",
					Help:      "Swap execution latency",
					Buckets:   prometheus.DefBuckets,
				},
			),
			PriceImpact: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "swap_price_impact_percent",
					Help:      "Reported price impact per swap",
					Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 25},
				},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity added per pool",
				},
				[]string{"pool_id"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removed per pool",
				},
				[]string{"pool_id"},
			),
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "pools_total",
					Help:      "Number of pools ever created",
				},
			),
			CrossChainSent: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "cross_chain_sent_total",
					Help:      "Outbound liquidity intents handed to the transport",
				},
				[]string{"dest_chain"},
			),
			CrossChainReceived: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "cross_chain_received_total",
					Help:      "Inbound liquidity intents received",
				},
				[]string{"source_chain", "status"},
			),
			CrossChainFailed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "coral",
					Subsystem: "amm",
					Name:      "cross_chain_failed_total",
					Help:      "Inbound liquidity intents that terminally failed",
				},
				[]string{"source_chain", "reason"},
			),
		}
	})
	return metrics
}
