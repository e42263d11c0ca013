package health

import "testing"

func TestMonitorSample(t *testing.T) {
	m, err := NewMonitor()
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	s := m.Sample()
	if s.NumCPU < 1 {
		t.Errorf("NumCPU = %d, want >= 1", s.NumCPU)
	}
	if s.Uptime < 0 {
		t.Errorf("Uptime = %v, want >= 0", s.Uptime)
	}
}
