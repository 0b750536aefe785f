// Package book implements the order book: two indexed arrays of price
// levels, a direct-mapped id table for O(1) cancel, and the crossing
// algorithms that run on the matcher's hot path.
package book

// Side is the resting/aggressing direction of an order.
type Side uint8

const (
	Bid Side = iota
	Ask
)

// Kind is the message/order kind.
type Kind uint8

const (
	Limit Kind = iota
	Market
	Cancel
)

// noLink is the sentinel value for an intrusive link field that points at
// nothing: either "not currently in any list" or "tail of its list".
const noLink int32 = -1

// Order is the fixed-layout record held in the pool and linked into the
// book's intrusive FIFOs. It never allocates and is never copied by value
// across the producer/matcher boundary: the ring carries only its pool
// index, inside an OrderMessage.
type Order struct {
	ID           uint64
	InstrumentID uint64
	Price        int64
	Quantity     uint32
	RemainingQty uint32
	Timestamp    int64
	Side         Side
	Kind         Kind
	Active       bool
	// Next is the intrusive forward link: the pool index of the next order
	// in whatever FIFO this order is currently linked into, or noLink.
	Next int32
}

// OrderMessage is the wire-copy record handed from the producer to the
// matcher over the ring. OrderIdx is a pool handle, valid for Limit and
// Market; CancelID is only meaningful for Cancel.
type OrderMessage struct {
	Kind     Kind
	OrderIdx int32
	CancelID uint64
}
