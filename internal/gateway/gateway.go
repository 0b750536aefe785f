// Package gateway implements the synthetic order generator that feeds the
// matcher: a deterministic mix of limit, market, and cancel traffic, with
// limit prices drawn from a normal distribution around a fixed mid-price.
package gateway

import (
	"math/rand"

	"github.com/yanun0323/logs"

	"matchcore/internal/book"
	"matchcore/internal/obs"
	"matchcore/internal/ops"
	"matchcore/internal/pool"
	"matchcore/internal/ring"
)

// Simulator generates order flow and pushes it onto the matcher's inbound
// ring. It runs on its own goroutine, unpinned, and is the sole producer
// for that ring.
type Simulator struct {
	cfg      ops.GatewayConfig
	pool     *pool.Pool[book.Order]
	outbound *ring.Ring[book.OrderMessage]
	metrics  *obs.Metrics
	running  func() bool

	rng      *rand.Rand
	nextID   uint64
	midPrice int64
}

// New builds a Simulator with its own RNG seeded from cfg.Seed, so a given
// seed always reproduces the same order flow. running is polled between
// orders so a shutdown request is honored promptly rather than only after
// the full order count is exhausted.
func New(cfg ops.GatewayConfig, p *pool.Pool[book.Order], outbound *ring.Ring[book.OrderMessage], metrics *obs.Metrics, running func() bool) *Simulator {
	return &Simulator{
		cfg:      cfg,
		pool:     p,
		outbound: outbound,
		metrics:  metrics,
		running:  running,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		nextID:   1,
		midPrice: cfg.MidPrice,
	}
}

// Run generates cfg.OrderCount messages, pushing each onto the outbound
// ring with back-pressure retry, then returns. A full ring is retried in a
// busy loop with IncRingFull bumped on each failed attempt; the retry has no
// bound, so Run keeps spinning for as long as the consumer leaves the ring
// full.
func (s *Simulator) Run() {
	for i := 0; i < s.cfg.OrderCount; i++ {
		if s.running != nil && !s.running() {
			return
		}

		msg, ok := s.nextMessage()
		if !ok {
			continue
		}

		for !s.outbound.Push(msg) {
			s.metrics.IncRingFull()
		}
		s.metrics.IncOrdersReceived()
	}
	logs.Infof("gateway: generated %d orders", s.cfg.OrderCount)
}

func (s *Simulator) nextMessage() (book.OrderMessage, bool) {
	roll := s.rng.Float64()
	switch {
	case roll < s.cfg.LimitRatio:
		return s.limitOrder()
	case roll < s.cfg.LimitRatio+s.cfg.MarketRatio:
		return s.marketOrder()
	default:
		return s.cancelOrder(), true
	}
}

func (s *Simulator) limitOrder() (book.OrderMessage, bool) {
	idx, ok := s.pool.Acquire()
	if !ok {
		s.metrics.IncPoolExhausted()
		return book.OrderMessage{}, false
	}
	o := s.pool.Get(idx)
	o.ID = s.nextID
	s.nextID++
	o.Side = s.randomSide()
	o.Kind = book.Limit
	o.Price = s.randomPrice()
	o.Quantity = s.randomQty()
	o.RemainingQty = o.Quantity

	return book.OrderMessage{Kind: book.Limit, OrderIdx: idx}, true
}

func (s *Simulator) marketOrder() (book.OrderMessage, bool) {
	idx, ok := s.pool.Acquire()
	if !ok {
		s.metrics.IncPoolExhausted()
		return book.OrderMessage{}, false
	}
	o := s.pool.Get(idx)
	o.ID = s.nextID
	s.nextID++
	o.Side = s.randomSide()
	o.Kind = book.Market
	o.Quantity = s.randomQty()
	o.RemainingQty = o.Quantity

	return book.OrderMessage{Kind: book.Market, OrderIdx: idx}, true
}

func (s *Simulator) cancelOrder() book.OrderMessage {
	return book.OrderMessage{Kind: book.Cancel, CancelID: s.randomPastID()}
}

func (s *Simulator) randomSide() book.Side {
	if s.rng.Float64() < 0.5 {
		return book.Bid
	}
	return book.Ask
}

// randomPrice walks a normal distribution around the configured mid-price,
// matching the literal sigma the spec's gateway simulator uses, and floors
// at 1 so a deep leftward excursion never produces a non-positive price.
func (s *Simulator) randomPrice() int64 {
	offset := s.rng.NormFloat64() * 5000
	price := s.midPrice + int64(offset)
	if price < 1 {
		return 1
	}
	return price
}

func (s *Simulator) randomQty() uint32 {
	return uint32(s.rng.Intn(999)) + 1
}

// randomPastID picks a uniformly random id among those already issued, so
// cancels target real orders instead of IDs that were never sent.
func (s *Simulator) randomPastID() uint64 {
	if s.nextID <= 1 {
		return 1
	}
	return uint64(s.rng.Int63n(int64(s.nextID-1))) + 1
}
