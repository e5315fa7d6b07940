package goEphemeral

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or histogram tracked by [Metrics].
type MetricID uint16

const (
	// MetricOTPIssued counts one-time passcodes stored successfully.
	MetricOTPIssued MetricID = iota
	// MetricOTPIssueFailure counts failed OTP issuance (generation or store write).
	MetricOTPIssueFailure
	// MetricOTPValid counts OTP validity checks that returned true.
	MetricOTPValid
	// MetricOTPInvalid counts OTP validity checks that returned false.
	MetricOTPInvalid
	// MetricOTPRevoked counts OTP removals that deleted an entry.
	MetricOTPRevoked
	// MetricOTPRevokeMiss counts OTP removals that found nothing.
	MetricOTPRevokeMiss
	// MetricOTPSwept counts expired OTP entries reclaimed by Sweep.
	MetricOTPSwept
	// MetricSessionIssued counts session tokens stored successfully.
	MetricSessionIssued
	// MetricSessionIssueFailure counts failed session issuance.
	MetricSessionIssueFailure
	// MetricSessionValid counts session validity checks that returned true.
	MetricSessionValid
	// MetricSessionInvalid counts session validity checks that returned false.
	MetricSessionInvalid
	// MetricSessionRevoked counts session removals that deleted an entry.
	MetricSessionRevoked
	// MetricSessionRevokeMiss counts session removals that found nothing.
	MetricSessionRevokeMiss
	// MetricSessionSwept counts expired session entries reclaimed by Sweep.
	MetricSessionSwept
	// MetricValidateLatency is the latency histogram for validity checks of both kinds.
	MetricValidateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters. A nil or disabled Metrics ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histogram buckets.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics instance from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the validate latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id by one.
func (m *Metrics) Inc(id MetricID) {
	m.Add(id, 1)
}

// Add increments counter id by n.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount || n == 0 {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Observe records d into the histogram for id. Only MetricValidateLatency has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricValidateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency histogram.
// A disabled Metrics returns empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricValidateLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}

	return s
}

// Validity checks are map lookups, so buckets are in microseconds. Bounds are
// inclusive and compared at nanosecond precision.
func bucketIndex(d time.Duration) int {
	switch {
	case d <= time.Microsecond:
		return 0
	case d <= 5*time.Microsecond:
		return 1
	case d <= 10*time.Microsecond:
		return 2
	case d <= 50*time.Microsecond:
		return 3
	case d <= 100*time.Microsecond:
		return 4
	case d <= 500*time.Microsecond:
		return 5
	case d <= time.Millisecond:
		return 6
	default:
		return 7
	}
}
