// Command rtl-acars-ng2 decodes ACARS downlink/uplink messages from a
// stream of offset-127 IQ samples: baseband conditioning, MSK bit
// recovery, frame assembly, and field parsing, emitting each accepted
// message to stdout (or, when configured, to an MQTT broker).
package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dglatting/rtl-acars-ng2/config"
	"github.com/dglatting/rtl-acars-ng2/diagnostics"
	"github.com/dglatting/rtl-acars-ng2/dsp"
	"github.com/dglatting/rtl-acars-ng2/health"
	"github.com/dglatting/rtl-acars-ng2/metrics"
	"github.com/dglatting/rtl-acars-ng2/pipeline"
	"github.com/dglatting/rtl-acars-ng2/sink"
	"github.com/dglatting/rtl-acars-ng2/source"
)

// verboseLogDir is where -v -v and above rotate their debug log segments.
const verboseLogDir = "./logs"

// logRotateInterval is how often the verbose log segment is compressed
// and rotated while the receiver runs.
const logRotateInterval = time.Hour

func main() {
	instanceID := uuid.New().String()
	log.Printf("[main] starting instance %s", instanceID)

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("[main] configuration error: %v", err)
	}

	rot, err := setupVerboseLogging(cfg)
	if err != nil {
		log.Fatalf("[main] verbose log setup failed: %v", err)
	}
	if rot != nil {
		defer rot.Close()
	}

	snk, err := buildSink(cfg)
	if err != nil {
		log.Fatalf("[main] sink setup failed: %v", err)
	}

	src := source.NewFile(os.Stdin)

	conditioner := dsp.NewConditioner(downsampleFactor(), cfg.HammingFIR, cfg.SquelchLevel)

	m := metrics.NewReceiver()
	monitor, err := health.NewMonitor()
	if err != nil {
		log.Printf("[main] health monitor unavailable: %v", err)
	}

	go serveMetrics(monitor)

	p := pipeline.New(src, snk, conditioner, cfg.PostDownsample, m)

	if err := p.Run(); err != nil {
		log.Fatalf("[main] pipeline exited with error: %v", err)
	}
	log.Printf("[main] clean shutdown")
}

// setupVerboseLogging rotates -v -v and above debug output through a
// diagnostics.Rotator, gzip-compressing the previous segment every
// logRotateInterval. Below that verbosity, logging is unaffected and nil
// is returned.
func setupVerboseLogging(cfg *config.Config) (*diagnostics.Rotator, error) {
	if cfg.Verbosity < 2 {
		return nil, nil
	}
	rot, err := diagnostics.NewRotator(verboseLogDir, "debug.log")
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rot))
	go rotateLoop(rot)
	return rot, nil
}

func rotateLoop(rot *diagnostics.Rotator) {
	ticker := time.NewTicker(logRotateInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		if err := rot.Rotate(now); err != nil {
			log.Printf("[main] log rotate failed: %v", err)
		}
	}
}

// downsampleFactor mirrors rtl_acars_ng.cc's optimal_settings: the input
// oversampling ratio 1 + 1000000/dsp.OutputRateHz, which is 21 at 48 kHz
// (a 1.008 MHz capture rate).
func downsampleFactor() int {
	return 1 + 1000000/dsp.OutputRateHz
}

func buildSink(cfg *config.Config) (sink.Sink, error) {
	if cfg.MQTTBroker == "" {
		return sink.NewStdout(os.Stdout), nil
	}
	return sink.NewMQTT(sink.MQTTConfig{
		Broker:   cfg.MQTTBroker,
		Topic:    cfg.MQTTTopic,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	})
}

// serveMetrics exposes /metrics (Prometheus) and /health (monitor may be
// nil if NewMonitor failed at startup, in which case /health reports an
// empty snapshot rather than 500s).
func serveMetrics(monitor *health.Monitor) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		var snap health.Snapshot
		if monitor != nil {
			snap = monitor.Sample()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	})
	if err := http.ListenAndServe(":9120", mux); err != nil {
		log.Printf("[main] metrics server stopped: %v", err)
	}
}
