package book

import (
	"matchcore/internal/arena"
	"matchcore/internal/pool"
)

// noLevel is the Go-idiomatic stand-in for the spec's "0 means no resting
// level" index convention: index 0 is a perfectly legal price level, so an
// unambiguous out-of-band sentinel is used instead. See DESIGN.md.
const noLevel = -1

// Config carries the compile-time-constant knobs that size and calibrate
// one OrderBook. Values are fixed for the book's lifetime.
type Config struct {
	MaxPriceLevels  int
	IDSlots         int
	PriceMultiplier int64
}

// OrderBook holds two dense arrays of price levels indexed by normalized
// price, a direct-mapped id table for O(1) cancel, and best-bid/best-ask
// cursors. It is owned exclusively by the matcher; nothing else mutates it.
type OrderBook struct {
	cfg Config
	p   *pool.Pool[Order]

	bids []PriceLevel
	asks []PriceLevel

	idMap []int32

	bestBidIdx int
	bestAskIdx int
}

// New builds an OrderBook backed by a, using p to resolve order handles.
func New(a *arena.Arena, p *pool.Pool[Order], cfg Config) *OrderBook {
	if cfg.MaxPriceLevels <= 0 {
		panic("book: MaxPriceLevels must be positive")
	}
	if cfg.IDSlots <= 0 || cfg.IDSlots&(cfg.IDSlots-1) != 0 {
		panic("book: IDSlots must be a positive power of two")
	}
	if cfg.PriceMultiplier <= 0 {
		panic("book: PriceMultiplier must be positive")
	}

	b := &OrderBook{
		cfg:        cfg,
		p:          p,
		bids:       arena.Alloc[PriceLevel](a, cfg.MaxPriceLevels),
		asks:       arena.Alloc[PriceLevel](a, cfg.MaxPriceLevels),
		idMap:      arena.Alloc[int32](a, cfg.IDSlots),
		bestBidIdx: noLevel,
		bestAskIdx: noLevel,
	}
	for i := range b.bids {
		b.bids[i].Reset()
		b.asks[i].Reset()
	}
	for i := range b.idMap {
		b.idMap[i] = noLink
	}
	return b
}

// priceToIndex maps a fixed-point price onto the level index space,
// clamping out-of-range prices to the maximum index rather than rejecting
// them. Callers are responsible for configuring PriceMultiplier and
// MaxPriceLevels to cover the price domain they intend to trade.
func (b *OrderBook) priceToIndex(price int64) int {
	idx := (price * 100) / b.cfg.PriceMultiplier
	if idx < 0 {
		return 0
	}
	if idx >= int64(len(b.bids)) {
		return len(b.bids) - 1
	}
	return int(idx)
}

func (b *OrderBook) levels(side Side) []PriceLevel {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) idSlot(id uint64) int {
	return int(id) & (b.cfg.IDSlots - 1)
}

// AddOrder inserts a LIMIT order into the book: it marks the order active,
// registers it in the id map (last writer wins on collision, see
// DESIGN.md), appends it to its price level's FIFO, and advances the
// relevant best-price cursor.
func (b *OrderBook) AddOrder(idx int32) {
	o := b.p.Get(idx)
	o.Active = true

	levelIdx := b.priceToIndex(o.Price)
	levels := b.levels(o.Side)
	level := &levels[levelIdx]
	level.Price = o.Price
	level.AddOrder(b.p, idx)

	b.idMap[b.idSlot(o.ID)] = idx

	if o.Side == Bid {
		if b.bestBidIdx == noLevel || levelIdx > b.bestBidIdx {
			b.bestBidIdx = levelIdx
		}
	} else {
		if b.bestAskIdx == noLevel || levelIdx < b.bestAskIdx {
			b.bestAskIdx = levelIdx
		}
	}
}

// CancelOrder looks up id in the direct-mapped table and, if it resolves to
// a live order with a matching id, deactivates it and subtracts it from its
// level's cache. The order is not unlinked from its FIFO; matching and
// compaction skip it via the Active/RemainingQty check.
func (b *OrderBook) CancelOrder(id uint64) bool {
	slot := b.idSlot(id)
	idx := b.idMap[slot]
	if idx == noLink {
		return false
	}
	o := b.p.Get(idx)
	if o.ID != id || !o.Active {
		return false
	}

	levelIdx := b.priceToIndex(o.Price)
	levels := b.levels(o.Side)
	levels[levelIdx].ReduceQty(o.RemainingQty)

	o.Active = false
	o.RemainingQty = 0
	b.idMap[slot] = noLink
	return true
}

// Match crosses resting bids against resting asks under price-time priority
// until no crossing remains, returning the total quantity filled.
func (b *OrderBook) Match() uint32 {
	var total uint32
	for b.bestBidIdx != noLevel && b.bestAskIdx != noLevel {
		bidLevel := &b.bids[b.bestBidIdx]
		askLevel := &b.asks[b.bestAskIdx]

		if bidLevel.CachedQty == 0 {
			b.advanceBid()
			continue
		}
		if askLevel.CachedQty == 0 {
			b.advanceAsk()
			continue
		}

		if bidLevel.Price < askLevel.Price {
			break
		}

		q := bidLevel.CachedQty
		if askLevel.CachedQty < q {
			q = askLevel.CachedQty
		}
		bidLevel.Match(b.p, q)
		askLevel.Match(b.p, q)
		total += q

		if bidLevel.CachedQty == 0 {
			b.advanceBid()
		}
		if askLevel.CachedQty == 0 {
			b.advanceAsk()
		}
	}
	return total
}

func (b *OrderBook) advanceBid() {
	b.bestBidIdx--
	if b.bestBidIdx < 0 {
		b.bestBidIdx = noLevel
	}
}

func (b *OrderBook) advanceAsk() {
	b.bestAskIdx++
	if b.bestAskIdx >= len(b.asks) {
		b.bestAskIdx = noLevel
	}
}

// MatchMarket drains the market order's remaining quantity across the
// opposite book, sweeping outward from the best cursor. It never inserts
// the order into any FIFO; the caller releases its pool slot once the sweep
// returns. The walk uses an explicit signed cursor with an "index went
// negative" sentinel check rather than an unsigned decrement, so it can
// never wrap around at index zero (see DESIGN.md §9 redesign note).
func (b *OrderBook) MatchMarket(idx int32) uint32 {
	o := b.p.Get(idx)
	var total uint32

	if o.Side == Bid {
		for b.bestAskIdx != noLevel && o.RemainingQty > 0 {
			level := &b.asks[b.bestAskIdx]
			if level.CachedQty == 0 {
				b.advanceAsk()
				continue
			}
			q := level.CachedQty
			if o.RemainingQty < q {
				q = o.RemainingQty
			}
			filled := level.Match(b.p, q)
			o.RemainingQty -= filled
			total += filled
			if level.CachedQty == 0 {
				b.advanceAsk()
			}
		}
		return total
	}

	for b.bestBidIdx != noLevel && o.RemainingQty > 0 {
		level := &b.bids[b.bestBidIdx]
		if level.CachedQty == 0 {
			b.advanceBid()
			continue
		}
		q := level.CachedQty
		if o.RemainingQty < q {
			q = o.RemainingQty
		}
		filled := level.Match(b.p, q)
		o.RemainingQty -= filled
		total += filled
		if level.CachedQty == 0 {
			b.advanceBid()
		}
	}
	return total
}

// BestBid returns the highest resting bid price and whether one exists.
func (b *OrderBook) BestBid() (int64, bool) {
	for i := b.bestBidIdx; i >= 0; i-- {
		if b.bids[i].CachedQty > 0 {
			return b.bids[i].Price, true
		}
	}
	return 0, false
}

// BestAsk returns the lowest resting ask price and whether one exists.
func (b *OrderBook) BestAsk() (int64, bool) {
	if b.bestAskIdx == noLevel {
		return 0, false
	}
	for i := b.bestAskIdx; i < len(b.asks); i++ {
		if b.asks[i].CachedQty > 0 {
			return b.asks[i].Price, true
		}
	}
	return 0, false
}

// Compact runs periodic maintenance across every level on both sides,
// unlinking filled/cancelled orders from their FIFOs. It is never called on
// the hot path.
func (b *OrderBook) Compact() {
	for i := range b.bids {
		b.bids[i].Compact(b.p)
	}
	for i := range b.asks {
		b.asks[i].Compact(b.p)
	}
}
