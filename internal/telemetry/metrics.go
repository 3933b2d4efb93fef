// Package telemetry provides metrics collection and reporting
// for monitoring the teamwork-mcp service.
package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// Metric names for the Teamwork API client and the MCP tool layer.
const (
	// Tool call counts
	MetricToolCalls        = "tools.calls"
	MetricToolCallsSuccess = "tools.calls.success"
	MetricToolCallsFailure = "tools.calls.failure"
	MetricToolCallsAuth    = "tools.calls.auth_rejected"

	// Teamwork API call counts by resource
	MetricAPICallsProjects = "teamwork.api_calls.projects"
	MetricAPICallsTasks    = "teamwork.api_calls.tasks"
	MetricAPICallsTime     = "teamwork.api_calls.time"
	MetricAPICallsPeople   = "teamwork.api_calls.people"

	// Success/failure metrics
	MetricAPICallsSuccess = "teamwork.api_calls.success"
	MetricAPICallsFailure = "teamwork.api_calls.failure"

	// v1 fallback usage
	MetricAPICallsV1Fallback = "teamwork.api_calls.v1_fallback"

	// Response times
	MetricResponseTimeAPI  = "teamwork.response_time.api"
	MetricResponseTimeTool = "tools.response_time"

	// Health endpoint
	MetricHealthProbes = "http.health_probes"
)

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by the specified amount
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] += amount
}

// SetGauge sets a named gauge to the specified value
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

// RecordTimer records a duration for the specified timer
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.timers[name]; !exists {
		m.timers[name] = make([]time.Duration, 0)
	}

	m.timers[name] = append(m.timers[name], duration)

	// Limit the number of stored durations to avoid unbounded growth
	if len(m.timers[name]) > 100 {
		m.timers[name] = m.timers[name][1:]
	}
}

// RecordTimestamp records the current time for the specified event
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latestTime[name] = time.Now()
}

// GetCounter retrieves the current value of a counter
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// GetGauge retrieves the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// GetTimerAverage calculates the average duration for a timer
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations, exists := m.timers[name]
	if !exists || len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return total / time.Duration(len(durations))
}

// GetTimerP95 calculates the 95th percentile duration for a timer
func (m *MetricsCollector) GetTimerP95(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations, exists := m.timers[name]
	if !exists || len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)

	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if sorted[j] > sorted[j+1] {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

// GetTimeSince calculates the time elapsed since a recorded timestamp
func (m *MetricsCollector) GetTimeSince(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timestamp, exists := m.latestTime[name]
	if !exists {
		return 0
	}

	return time.Since(timestamp)
}

// GetReport generates a report of all collected metrics
func (m *MetricsCollector) GetReport() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := "Metrics Report:\n"
	report += "==============\n\n"

	report += "Counters:\n"
	for name, value := range m.counters {
		report += fmt.Sprintf("  %s: %d\n", name, value)
	}

	report += "\nGauges:\n"
	for name, value := range m.gauges {
		report += fmt.Sprintf("  %s: %.2f\n", name, value)
	}

	report += "\nTimers (avg):\n"
	for name := range m.timers {
		avg := m.GetTimerAverage(name)
		p95 := m.GetTimerP95(name)
		report += fmt.Sprintf("  %s: avg=%v p95=%v count=%d\n",
			name, avg, p95, len(m.timers[name]))
	}

	report += "\nTime Since:\n"
	for name, timestamp := range m.latestTime {
		report += fmt.Sprintf("  %s: %v ago (%s)\n",
			name, time.Since(timestamp), timestamp.Format(time.RFC3339))
	}

	return report
}

// Reset clears all collected metrics
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.timers = make(map[string][]time.Duration)
	m.latestTime = make(map[string]time.Time)
}
