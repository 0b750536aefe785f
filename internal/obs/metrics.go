// Package obs collects lightweight counters off the matcher's hot path and
// wires continuous profiling around it.
package obs

import "sync/atomic"

// Metrics aggregates counters the matcher and gateway bump with
// sync/atomic. Every field is unexported and changed only through the
// Inc*/Add* helpers, which use atomic adds, so callers never take a lock.
type Metrics struct {
	ordersReceived  uint64
	ordersProcessed uint64
	totalFills      uint64
	ringFullCount   uint64
	poolExhausted   uint64
	cancelsApplied  uint64
	cancelsRejected uint64
}

// NewMetrics allocates a zeroed metrics block.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncOrdersReceived() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersReceived, 1)
}

func (m *Metrics) IncOrdersProcessed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersProcessed, 1)
}

func (m *Metrics) AddFills(qty uint64) {
	if m == nil || qty == 0 {
		return
	}
	atomic.AddUint64(&m.totalFills, qty)
}

func (m *Metrics) IncRingFull() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ringFullCount, 1)
}

func (m *Metrics) IncPoolExhausted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.poolExhausted, 1)
}

func (m *Metrics) IncCancelApplied() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cancelsApplied, 1)
}

func (m *Metrics) IncCancelRejected() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.cancelsRejected, 1)
}

// Snapshot is a point-in-time copy of every counter, safe to log or print.
type Snapshot struct {
	OrdersReceived  uint64
	OrdersProcessed uint64
	TotalFills      uint64
	RingFullCount   uint64
	PoolExhausted   uint64
	CancelsApplied  uint64
	CancelsRejected uint64
}

// Snapshot reads every counter. It is not called on the hot path.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		OrdersReceived:  atomic.LoadUint64(&m.ordersReceived),
		OrdersProcessed: atomic.LoadUint64(&m.ordersProcessed),
		TotalFills:      atomic.LoadUint64(&m.totalFills),
		RingFullCount:   atomic.LoadUint64(&m.ringFullCount),
		PoolExhausted:   atomic.LoadUint64(&m.poolExhausted),
		CancelsApplied:  atomic.LoadUint64(&m.cancelsApplied),
		CancelsRejected: atomic.LoadUint64(&m.cancelsRejected),
	}
}
