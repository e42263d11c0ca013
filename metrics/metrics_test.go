package metrics

import "testing"

func TestNewReceiverCollectorsNonNil(t *testing.T) {
	r := NewReceiver()

	if r.FramesAccepted == nil || r.FramesCorrected == nil || r.FramesDropped == nil {
		t.Fatalf("frame counters must be non-nil")
	}
	if r.BitsProcessed == nil || r.BlocksProcessed == nil {
		t.Fatalf("throughput counters must be non-nil")
	}
	if r.Squelched == nil || r.SignalLevelDB == nil {
		t.Fatalf("gauges must be non-nil")
	}

	r.FramesAccepted.Inc()
	r.Squelched.Set(1)
}
