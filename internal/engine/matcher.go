// Package engine runs the single-threaded matching loop: it drains order
// messages from the inbound ring, applies them to the book, and releases
// each market order's pool slot once its sweep is done. Filled or cancelled
// limit orders keep their slots until the book is compacted.
package engine

import (
	"sync/atomic"

	"github.com/yanun0323/logs"

	"matchcore/internal/book"
	"matchcore/internal/obs"
	"matchcore/internal/pool"
	"matchcore/internal/ring"
)

// Matcher owns the book, the order pool, and the inbound message ring. It
// is built once at startup and run on a single pinned goroutine for the
// lifetime of the process.
type Matcher struct {
	book    *book.OrderBook
	pool    *pool.Pool[book.Order]
	inbound *ring.Ring[book.OrderMessage]
	metrics *obs.Metrics

	running atomic.Bool
}

// New builds a Matcher over an already-constructed book, pool, and ring.
// running starts true so a Stop observed before Run still takes effect
// instead of being clobbered by Run's own startup.
func New(b *book.OrderBook, p *pool.Pool[book.Order], inbound *ring.Ring[book.OrderMessage], metrics *obs.Metrics) *Matcher {
	m := &Matcher{book: b, pool: p, inbound: inbound, metrics: metrics}
	m.running.Store(true)
	return m
}

// Run spins on the inbound ring, dispatching each message as it arrives,
// until Stop is called. It never sleeps or yields while the ring is
// empty: the matcher is meant to run on a pinned, otherwise-idle core.
func (m *Matcher) Run() {
	for m.running.Load() {
		msg, ok := m.inbound.Pop()
		if !ok {
			continue
		}
		m.dispatch(msg)
	}
	m.drain()
}

// Stop requests the run loop to exit after draining whatever remains in
// the ring. It is safe to call from any goroutine.
func (m *Matcher) Stop() {
	m.running.Store(false)
}

// drain empties the ring once more after the run loop observes running ==
// false, so messages pushed concurrently with Stop are not silently
// dropped.
func (m *Matcher) drain() {
	for {
		msg, ok := m.inbound.Pop()
		if !ok {
			return
		}
		m.dispatch(msg)
	}
}

func (m *Matcher) dispatch(msg book.OrderMessage) {
	switch msg.Kind {
	case book.Limit:
		m.handleLimit(msg.OrderIdx)
	case book.Market:
		m.handleMarket(msg.OrderIdx)
	case book.Cancel:
		m.handleCancel(msg.CancelID)
	default:
		logs.Errorf("engine: unknown message kind %d", msg.Kind)
	}
	m.metrics.IncOrdersProcessed()
}

func (m *Matcher) handleLimit(idx int32) {
	m.book.AddOrder(idx)
	filled := m.book.Match()
	m.metrics.AddFills(uint64(filled))
}

func (m *Matcher) handleMarket(idx int32) {
	filled := m.book.MatchMarket(idx)
	m.metrics.AddFills(uint64(filled))
	m.pool.Release(idx)
}

func (m *Matcher) handleCancel(id uint64) {
	if m.book.CancelOrder(id) {
		m.metrics.IncCancelApplied()
		return
	}
	m.metrics.IncCancelRejected()
}
