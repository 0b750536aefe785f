package book

import "matchcore/internal/pool"

// PriceLevel is an intrusive FIFO of resting orders plus a cached aggregate
// quantity at one fixed-point price. CachedQty is the sole constant-time
// signal the book uses to decide whether a level is matchable; every path
// that consumes quantity (match, cancel) must keep it in lockstep with the
// live orders in Orders.
type PriceLevel struct {
	Price     int64
	CachedQty uint32
	Orders    FIFO
}

// Reset clears a level back to empty so its array slot can be reused for a
// different price. The book calls this only during construction, seeding
// every slot's FIFO sentinels.
func (pl *PriceLevel) Reset() {
	pl.Price = 0
	pl.CachedQty = 0
	pl.Orders = NewFIFO()
}

// AddOrder appends idx to the level's FIFO and folds its remaining quantity
// into the cache.
func (pl *PriceLevel) AddOrder(p *pool.Pool[Order], idx int32) {
	o := p.Get(idx)
	pl.Orders.PushBack(p, idx)
	pl.CachedQty += o.RemainingQty
}

// Match delegates to the FIFO and subtracts the fill from the cache.
func (pl *PriceLevel) Match(p *pool.Pool[Order], qty uint32) uint32 {
	filled := pl.Orders.Match(p, qty)
	pl.ReduceQty(filled)
	return filled
}

// ReduceQty subtracts n from the cache, saturating at zero. The book calls
// this directly on external cancel so a subsequent match sees the correct
// aggregate without first running compaction.
func (pl *PriceLevel) ReduceQty(n uint32) {
	if n >= pl.CachedQty {
		pl.CachedQty = 0
		return
	}
	pl.CachedQty -= n
}

// Compact runs FIFO compaction for this level.
func (pl *PriceLevel) Compact(p *pool.Pool[Order]) {
	pl.Orders.Compact(p)
}
