// Package metrics provides structures and functions for collecting and managing server health and performance metrics.
// file: internal/metrics/server_metrics.go.
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// ServerMetrics holds various metrics about the server's health and performance.
type ServerMetrics struct {
	// Server uptime and basic info.
	StartTime     time.Time     `json:"startTime"`
	Uptime        time.Duration `json:"uptime"`
	GoVersion     string        `json:"goVersion"`
	NumGoroutines int           `json:"numGoroutines"`

	// Memory stats.
	MemoryAllocated   uint64 `json:"memoryAllocated"`   // Currently allocated memory in bytes.
	MemoryTotalAlloc  uint64 `json:"memoryTotalAlloc"`  // Total allocated memory since start.
	MemorySystemTotal uint64 `json:"memorySystemTotal"` // Total memory obtained from system.
	MemoryGCCount     uint32 `json:"memoryGCCount"`     // Number of completed GC cycles.

	// Request stats.
	TotalRequests      int            `json:"totalRequests"`
	FailedRequests     int            `json:"failedRequests"`
	TotalNotifications int            `json:"totalNotifications"`
	RequestCounts      map[string]int `json:"requestCounts"` // Method to call count.
}

// Collector manages server metrics collection and reporting.
type Collector struct {
	metrics   ServerMetrics
	startTime time.Time
	mu        sync.RWMutex
}

// NewCollector creates a new metrics collector instance.
func NewCollector() *Collector {
	startTime := time.Now()

	return &Collector{
		metrics: ServerMetrics{
			StartTime:     startTime,
			GoVersion:     runtime.Version(),
			RequestCounts: make(map[string]int),
		},
		startTime: startTime,
	}
}

// Snapshot returns a copy of the current server metrics, refreshing the
// real-time runtime figures.
func (c *Collector) Snapshot() ServerMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.Uptime = time.Since(c.startTime)
	c.metrics.NumGoroutines = runtime.NumGoroutine()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	c.metrics.MemoryAllocated = memStats.Alloc
	c.metrics.MemoryTotalAlloc = memStats.TotalAlloc
	c.metrics.MemorySystemTotal = memStats.Sys
	c.metrics.MemoryGCCount = memStats.NumGC

	// Copy the metrics to avoid race conditions.
	metricsCopy := c.metrics
	metricsCopy.RequestCounts = make(map[string]int, len(c.metrics.RequestCounts))
	for method, count := range c.metrics.RequestCounts {
		metricsCopy.RequestCounts[method] = count
	}

	return metricsCopy
}

// RecordRequest records statistics about a handled request.
func (c *Collector) RecordRequest(method string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalRequests++
	if !success {
		c.metrics.FailedRequests++
	}
	c.metrics.RequestCounts[method]++
}

// RecordNotification records a handled notification.
func (c *Collector) RecordNotification(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalNotifications++
	c.metrics.RequestCounts[method]++
}
