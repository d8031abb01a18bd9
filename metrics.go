package permkit

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricRegister counts successful permission registrations.
	MetricRegister MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected with ErrDuplicateName.
	MetricRegisterDuplicate
	// MetricUnregister counts unregistrations.
	MetricUnregister
	// MetricMaskComputed counts mask computations that went to the registry.
	MetricMaskComputed
	// MetricResolutionMiss counts references that resolved to no permission.
	MetricResolutionMiss
	// MetricStrictFailure counts MaskStrict calls that returned an error.
	MetricStrictFailure
	// MetricCacheHit counts mask computations served from the cache.
	MetricCacheHit
	// MetricCacheMiss counts cache lookups that found no entry.
	MetricCacheMiss
	// MetricCacheError counts cache operations that failed and fell through to computation.
	MetricCacheError
	metricIDCount
)

const cacheLineSize = 64

// padded to a cache line so concurrent Inc on different IDs does not false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of atomic counters. A nil or disabled Metrics is a
// no-op on every method.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics set honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments one counter. Safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Add increments one counter by n.
func (m *Metrics) Add(id MetricID, n uint64) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, n)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics snapshot as empty.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
