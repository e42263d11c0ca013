// Package metrics exposes the receiver's running counters as Prometheus
// collectors, the way the reference receiver's PrometheusMetrics type
// registers its gauges via promauto at process start.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Receiver holds the collectors the pipeline updates as frames flow
// through it.
type Receiver struct {
	FramesAccepted  prometheus.Counter // CRC passed without correction
	FramesCorrected prometheus.Counter // CRC passed after a single-bit flip
	FramesDropped   prometheus.Counter // CRC failed, no correction found
	BitsProcessed   prometheus.Counter
	BlocksProcessed prometheus.Counter
	Squelched       prometheus.Gauge // 1 while the current block is muted
	SignalLevelDB   prometheus.Gauge
}

// NewReceiver registers and returns the receiver's metric collectors
// against the default Prometheus registry.
func NewReceiver() *Receiver {
	return &Receiver{
		FramesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "acars",
			Name:      "frames_accepted_total",
			Help:      "ACARS frames accepted with a clean CRC.",
		}),
		FramesCorrected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "acars",
			Name:      "frames_corrected_total",
			Help:      "ACARS frames accepted after single-bit CRC correction.",
		}),
		FramesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "acars",
			Name:      "frames_dropped_total",
			Help:      "ACARS frames dropped: CRC failed and no single-bit correction matched.",
		}),
		BitsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "acars",
			Name:      "bits_processed_total",
			Help:      "Bits recovered by the bit synchronizer.",
		}),
		BlocksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "acars",
			Name:      "iq_blocks_processed_total",
			Help:      "IQ blocks pulled from the sample source and conditioned.",
		}),
		Squelched: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "acars",
			Name:      "squelch_active",
			Help:      "1 when the current IQ block is muted by squelch, 0 otherwise.",
		}),
		SignalLevelDB: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "acars",
			Name:      "signal_level_db",
			Help:      "Bit synchronizer amplitude tracker, in approximate dB.",
		}),
	}
}
