// Package sysmon samples host and process resource usage for the health
// endpoint.
package sysmon

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 `json:"cpuPercent"` // 0.0 .. 100.0
	MemPercent float64 `json:"memPercent"` // 0.0 .. 100.0
}

// RuntimeStats holds the Go runtime figures of this process.
type RuntimeStats struct {
	HeapAlloc  uint64 `json:"heapAllocBytes"`
	Sys        uint64 `json:"sysBytes"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

// Report combines host and process figures with the process uptime.
type Report struct {
	System  Stats        `json:"system"`
	Runtime RuntimeStats `json:"runtime"`
	Uptime  string       `json:"uptime"`
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// ReadRuntime reads the current Go runtime statistics.
func ReadRuntime() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

// Snapshot builds a Report for a process started at started.
func Snapshot(started time.Time) Report {
	return Report{
		System:  Sample(),
		Runtime: ReadRuntime(),
		Uptime:  time.Since(started).Round(time.Second).String(),
	}
}
