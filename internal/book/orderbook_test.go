package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/arena"
	"matchcore/internal/pool"
)

func newTestBook(t *testing.T, maxLevels int) (*OrderBook, *pool.Pool[Order]) {
	t.Helper()
	a := arena.New(8 << 20)
	p := pool.New[Order](a, 4096)
	b := New(a, p, Config{
		MaxPriceLevels:  maxLevels,
		IDSlots:         1024,
		PriceMultiplier: 10_000,
	})
	return b, p
}

func addLimit(t *testing.T, p *pool.Pool[Order], id uint64, side Side, price int64, qty uint32) int32 {
	t.Helper()
	idx, ok := p.Acquire()
	require.True(t, ok)
	o := p.Get(idx)
	o.ID = id
	o.Side = side
	o.Kind = Limit
	o.Price = price
	o.Quantity = qty
	o.RemainingQty = qty
	return idx
}

// S1 - simple cross: BID id=1 price=1,000,000 qty=50 vs ASK id=2
// price=1,000,000 qty=30. match() returns 30; BID remaining=20 and still
// active, ASK remaining=0 and inactive.
func TestScenarioSimpleCross(t *testing.T) {
	b, p := newTestBook(t, 20001)

	bidIdx := addLimit(t, p, 1, Bid, 1_000_000, 50)
	b.AddOrder(bidIdx)
	askIdx := addLimit(t, p, 2, Ask, 1_000_000, 30)
	b.AddOrder(askIdx)

	filled := b.Match()
	assert.Equal(t, uint32(30), filled)

	bid := p.Get(bidIdx)
	ask := p.Get(askIdx)
	assert.True(t, bid.Active)
	assert.Equal(t, uint32(20), bid.RemainingQty)
	assert.False(t, ask.Active)
	assert.Equal(t, uint32(0), ask.RemainingQty)
}

// S2 - no cross: BID id=1 price=900,000 qty=10 vs ASK id=2 price=1,100,000
// qty=10. match() returns 0; both remain active at full quantity.
func TestScenarioNoCross(t *testing.T) {
	b, p := newTestBook(t, 20001)

	bidIdx := addLimit(t, p, 1, Bid, 900_000, 10)
	b.AddOrder(bidIdx)
	askIdx := addLimit(t, p, 2, Ask, 1_100_000, 10)
	b.AddOrder(askIdx)

	filled := b.Match()
	assert.Equal(t, uint32(0), filled)

	bid := p.Get(bidIdx)
	ask := p.Get(askIdx)
	assert.True(t, bid.Active)
	assert.Equal(t, uint32(10), bid.RemainingQty)
	assert.True(t, ask.Active)
	assert.Equal(t, uint32(10), ask.RemainingQty)

	bestBid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(900_000), bestBid)

	bestAsk, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(1_100_000), bestAsk)
}

// S3 - FIFO fairness: BIDs id=1 (qty=20) then id=2 (qty=30) at
// price=1,000,000; ASK id=3 at the same price qty=25. match() fills id=1
// fully (20), id=2 partially (5); id=1 inactive, id=2 remaining=25, id=3
// inactive.
func TestScenarioFIFOFairness(t *testing.T) {
	b, p := newTestBook(t, 20001)

	first := addLimit(t, p, 1, Bid, 1_000_000, 20)
	b.AddOrder(first)
	second := addLimit(t, p, 2, Bid, 1_000_000, 30)
	b.AddOrder(second)
	aggressor := addLimit(t, p, 3, Ask, 1_000_000, 25)
	b.AddOrder(aggressor)

	filled := b.Match()
	assert.Equal(t, uint32(25), filled)

	assert.False(t, p.Get(first).Active)
	assert.Equal(t, uint32(0), p.Get(first).RemainingQty)
	assert.True(t, p.Get(second).Active)
	assert.Equal(t, uint32(25), p.Get(second).RemainingQty)
	assert.False(t, p.Get(aggressor).Active)
}

// S4 - market sweep: resting ASKs id=1 (price=1,000,000, qty=100) and id=2
// (price=1,010,000, qty=50); market BID qty=120. match_market returns 120,
// consuming id=1 fully and id=2 by 20.
func TestScenarioMarketSweep(t *testing.T) {
	b, p := newTestBook(t, 20001)

	l1 := addLimit(t, p, 1, Ask, 1_000_000, 100)
	b.AddOrder(l1)
	l2 := addLimit(t, p, 2, Ask, 1_010_000, 50)
	b.AddOrder(l2)

	mktIdx := addLimit(t, p, 3, Bid, 0, 120)
	p.Get(mktIdx).Kind = Market

	filled := b.MatchMarket(mktIdx)
	assert.Equal(t, uint32(120), filled)
	assert.False(t, p.Get(l1).Active)
	assert.Equal(t, uint32(0), p.Get(l1).RemainingQty)
	assert.True(t, p.Get(l2).Active)
	assert.Equal(t, uint32(30), p.Get(l2).RemainingQty)
	assert.Equal(t, uint32(0), p.Get(mktIdx).RemainingQty)

	bestAsk, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(1_010_000), bestAsk)
}

// S5 - cancel before match: BID id=7 price=1,000,000 qty=50;
// cancel_order(7) => true, level's cached_qty=0; ASK id=8 same price
// qty=50; match() returns 0; second cancel_order(7) => false.
func TestScenarioCancelBeforeMatch(t *testing.T) {
	b, p := newTestBook(t, 20001)

	bidIdx := addLimit(t, p, 7, Bid, 1_000_000, 50)
	b.AddOrder(bidIdx)

	ok := b.CancelOrder(7)
	require.True(t, ok)
	assert.False(t, p.Get(bidIdx).Active)

	level := &b.bids[b.priceToIndex(1_000_000)]
	assert.Equal(t, uint32(0), level.CachedQty)

	askIdx := addLimit(t, p, 8, Ask, 1_000_000, 50)
	b.AddOrder(askIdx)

	filled := b.Match()
	assert.Equal(t, uint32(0), filled)
	assert.True(t, p.Get(askIdx).Active)

	assert.False(t, b.CancelOrder(7))
}

func TestCancelIsIdempotent(t *testing.T) {
	b, p := newTestBook(t, 20001)
	idx := addLimit(t, p, 42, Ask, 1_000_000, 3)
	b.AddOrder(idx)

	assert.True(t, b.CancelOrder(42))
	assert.False(t, b.CancelOrder(42))
}

func TestCancelUnknownIDFails(t *testing.T) {
	b, _ := newTestBook(t, 20001)
	assert.False(t, b.CancelOrder(999))
}

// Property: across adds, a cancel, and a limit fill, cached quantity
// at a level always equals the sum of RemainingQty across its active
// orders.
func TestCachedQtyCoherence(t *testing.T) {
	b, p := newTestBook(t, 20001)

	a1 := addLimit(t, p, 1, Ask, 1_000_000, 7)
	b.AddOrder(a1)
	a2 := addLimit(t, p, 2, Ask, 1_000_000, 3)
	b.AddOrder(a2)

	level := &b.asks[b.priceToIndex(1_000_000)]
	assert.Equal(t, uint32(10), level.CachedQty)

	require.True(t, b.CancelOrder(2))
	assert.Equal(t, uint32(7), level.CachedQty)

	bidIdx := addLimit(t, p, 3, Bid, 1_000_000, 4)
	b.AddOrder(bidIdx)
	b.Match()
	assert.Equal(t, uint32(3), level.CachedQty)
}

// Property: total quantity is conserved - everything filled on one side is
// filled on the other, and nothing is created or destroyed.
func TestConservationOfQuantity(t *testing.T) {
	b, p := newTestBook(t, 20001)

	askIdx := addLimit(t, p, 1, Ask, 1_000_000, 10)
	b.AddOrder(askIdx)
	bidIdx := addLimit(t, p, 2, Bid, 1_000_000, 6)
	b.AddOrder(bidIdx)

	filled := b.Match()
	assert.Equal(t, uint32(6), filled)

	ask := p.Get(askIdx)
	bid := p.Get(bidIdx)
	assert.Equal(t, ask.Quantity-filled, ask.RemainingQty)
	assert.Equal(t, bid.Quantity-filled, bid.RemainingQty)
	assert.False(t, bid.Active)
	assert.True(t, ask.Active)
}

// Property: pool conservation - every slot released by compaction is
// available again, and in-use + available always equals capacity.
func TestCompactReleasesFilledOrdersToPool(t *testing.T) {
	b, p := newTestBook(t, 20001)

	askIdx := addLimit(t, p, 1, Ask, 1_000_000, 10)
	b.AddOrder(askIdx)
	bidIdx := addLimit(t, p, 2, Bid, 1_000_000, 10)
	b.AddOrder(bidIdx)

	filled := b.Match()
	require.Equal(t, uint32(10), filled)

	before := p.Available()
	b.Compact()
	assert.Equal(t, before+2, p.Available())
	assert.Equal(t, p.Capacity(), p.InUse()+p.Available())
}
