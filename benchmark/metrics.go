// Package benchmark - Functionality for running benchmarks.
package benchmark

import (
	"runtime"
	"time"
)

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
}

// Report is the outcome of a benchmark run.
type Report struct {
	Image       string        `json:"image"`
	Timestamp   time.Time     `json:"timestamp"`
	Loops       int           `json:"loops"`
	Parallel    bool          `json:"parallel"`
	Elapsed     time.Duration `json:"elapsed"`
	FPS         float64       `json:"fps"`
	Delivered   int           `json:"delivered"`
	Dropped     int           `json:"dropped"`
	LastResult  string        `json:"last_result"`
	MemoryStats MemoryMetrics `json:"memory_stats"`
	CPUStats    CPUMetrics    `json:"cpu_stats"`
}

// ElapsedMillis returns the elapsed time of the processing loop in milliseconds.
func (r *Report) ElapsedMillis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

func snapshot() runtime.MemStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return m
}

func memoryDelta(start, end runtime.MemStats) MemoryMetrics {
	return MemoryMetrics{
		AllocBytes:      end.Alloc,
		TotalAllocBytes: end.TotalAlloc - start.TotalAlloc,
		SysBytes:        end.Sys,
		NumGC:           end.NumGC - start.NumGC,
		HeapAllocBytes:  end.HeapAlloc,
		HeapSysBytes:    end.HeapSys,
	}
}

func fps(loops int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(loops) / elapsed.Seconds()
}
