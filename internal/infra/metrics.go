package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed  atomic.Uint64
	crossesPriced    atomic.Uint64
	indeterminate    atomic.Uint64
	ordersRejected   atomic.Uint64
	invalidSnapshots atomic.Uint64
	errorsTotal      atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	activeBooks   atomic.Int32
	feedConnected atomic.Int32 // 1 = connected, 0 = down
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records an event processing with latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordCrossPriced records a successfully priced cross.
func (m *Metrics) RecordCrossPriced() {
	m.crossesPriced.Add(1)
}

// RecordIndeterminate records a book state the pricer could not resolve.
func (m *Metrics) RecordIndeterminate() {
	m.indeterminate.Add(1)
}

// RecordOrderRejected records an order turned away at admission.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// RecordInvalidSnapshot records a dropped market snapshot.
func (m *Metrics) RecordInvalidSnapshot() {
	m.invalidSnapshots.Add(1)
}

// SetActiveBooks sets the number of symbols with book state.
func (m *Metrics) SetActiveBooks(count int32) {
	m.activeBooks.Store(count)
}

// SetFeedConnected sets the market data feed connection state.
func (m *Metrics) SetFeedConnected(connected bool) {
	if connected {
		m.feedConnected.Store(1)
	} else {
		m.feedConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed  uint64    `json:"events_processed"`
	CrossesPriced    uint64    `json:"crosses_priced"`
	Indeterminate    uint64    `json:"indeterminate"`
	OrdersRejected   uint64    `json:"orders_rejected"`
	InvalidSnapshots uint64    `json:"invalid_snapshots"`
	ErrorsTotal      uint64    `json:"errors_total"`
	AvgLatencyNs     int64     `json:"avg_latency_ns"`
	ActiveBooks      int32     `json:"active_books"`
	FeedConnected    bool      `json:"feed_connected"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed:  m.eventsProcessed.Load(),
		CrossesPriced:    m.crossesPriced.Load(),
		Indeterminate:    m.indeterminate.Load(),
		OrdersRejected:   m.ordersRejected.Load(),
		InvalidSnapshots: m.invalidSnapshots.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		AvgLatencyNs:     avgLatency,
		ActiveBooks:      m.activeBooks.Load(),
		FeedConnected:    m.feedConnected.Load() == 1,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.crossesPriced.Store(0)
	m.indeterminate.Store(0)
	m.ordersRejected.Store(0)
	m.invalidSnapshots.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.activeBooks.Store(0)
	m.feedConnected.Store(0)
}
