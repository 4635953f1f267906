package sysmon

import (
	"testing"
	"time"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestReadRuntime(t *testing.T) {
	t.Parallel()
	rs := ReadRuntime()
	if rs.HeapAlloc == 0 || rs.Sys == 0 {
		t.Errorf("empty runtime stats: %+v", rs)
	}
	if rs.Goroutines < 1 {
		t.Errorf("Goroutines = %d, want >= 1", rs.Goroutines)
	}
}

func TestSnapshot_Uptime(t *testing.T) {
	t.Parallel()
	r := Snapshot(time.Now().Add(-90 * time.Second))
	if r.Uptime != "1m30s" {
		t.Errorf("Uptime = %q, want 1m30s", r.Uptime)
	}
}
