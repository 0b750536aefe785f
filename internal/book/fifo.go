package book

import "matchcore/internal/pool"

// FIFO is a singly-linked list whose link field lives inside Order itself.
// Appending never allocates: it just wires an existing pool slot's Next
// field and moves the tail handle. Orders holds handles only; the caller
// supplies the pool to resolve them.
type FIFO struct {
	head  int32
	tail  int32
	count int32
}

// NewFIFO returns an empty FIFO.
func NewFIFO() FIFO {
	return FIFO{head: noLink, tail: noLink}
}

// Count returns the number of orders currently linked, including inactive
// ones awaiting compaction.
func (f *FIFO) Count() int32 { return f.count }

// Empty reports whether the FIFO has no linked orders at all.
func (f *FIFO) Empty() bool { return f.count == 0 }

// PushBack links idx at the tail in O(1). The caller must own idx and
// guarantee it is not currently linked into any other FIFO.
func (f *FIFO) PushBack(p *pool.Pool[Order], idx int32) {
	o := p.Get(idx)
	o.Next = noLink
	if f.tail == noLink {
		f.head = idx
		f.tail = idx
	} else {
		p.Get(f.tail).Next = idx
		f.tail = idx
	}
	f.count++
}

// Match walks from head and applies fills greedily under FIFO order: the
// oldest active order with remaining quantity is exhausted first. It returns
// the total quantity filled across all nodes touched, which may be less than
// qty if the list runs out of live quantity first.
func (f *FIFO) Match(p *pool.Pool[Order], qty uint32) uint32 {
	var filled uint32
	cur := f.head
	for cur != noLink && qty > 0 {
		o := p.Get(cur)
		if o.Active && o.RemainingQty > 0 {
			take := o.RemainingQty
			if qty < take {
				take = qty
			}
			o.RemainingQty -= take
			qty -= take
			filled += take
			if o.RemainingQty == 0 {
				o.Active = false
			}
		}
		cur = o.Next
	}
	return filled
}

// Compact unlinks every non-active or zero-quantity node in O(length) and
// returns its pool slot, freeing it for reuse. It is periodic maintenance,
// never called on the hot path: releasing a node before it is unlinked
// here would let the pool hand its index to a new order while a stale
// Next pointer elsewhere in the list still referenced it.
func (f *FIFO) Compact(p *pool.Pool[Order]) {
	newHead, newTail, newCount := noLink, noLink, int32(0)
	cur := f.head
	for cur != noLink {
		o := p.Get(cur)
		next := o.Next
		if o.Active && o.RemainingQty > 0 {
			o.Next = noLink
			if newTail == noLink {
				newHead = cur
				newTail = cur
			} else {
				p.Get(newTail).Next = cur
				newTail = cur
			}
			newCount++
		} else {
			p.Release(cur)
		}
		cur = next
	}
	f.head, f.tail, f.count = newHead, newTail, newCount
}
