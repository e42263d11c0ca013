// Package health reports a process resource snapshot — CPU percentage,
// resident memory, uptime, and core count — the way the reference
// receiver's load and instance reporters sample gopsutil for core count
// and load. The snapshot carries no pipeline counters.
package health

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time process health reading.
type Snapshot struct {
	CPUPercent float64
	RSSBytes   uint64
	Uptime     time.Duration
	NumCPU     int
}

// Monitor samples the current process's resource usage on demand.
type Monitor struct {
	started time.Time
	proc    *process.Process
	numCPU  int
}

// NewMonitor opens a handle on the running process and caches the
// logical CPU count, ready for repeated Sample calls.
func NewMonitor() (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	info, err := cpu.Info()
	numCPU := 1
	if err == nil && len(info) > 0 {
		numCPU = len(info)
	}
	return &Monitor{started: time.Now(), proc: proc, numCPU: numCPU}, nil
}

// Sample returns the current CPU/RSS/uptime reading. A failure to read
// either stat yields a zero value for that field rather than an error,
// since health reporting should never take down the receiver.
func (m *Monitor) Sample() Snapshot {
	s := Snapshot{Uptime: time.Since(m.started), NumCPU: m.numCPU}

	if pct, err := m.proc.Percent(0); err == nil {
		s.CPUPercent = pct
	}
	if mem, err := m.proc.MemoryInfo(); err == nil && mem != nil {
		s.RSSBytes = mem.RSS
	}
	return s
}
