package orderbookv1

import "sort"

// DefaultMaxLevel is the default query window for depth level lookups.
const DefaultMaxLevel = 100

// topLevel is the 1-indexed first depth level.
const topLevel = 1

// DepthLevel aggregates all resting order quantity at one price.
type DepthLevel struct {
	price         int64
	orderCount    int64
	totalQty      int64
	lastChangeQty int64
}

// NewDepthLevel creates an empty level at price.
func NewDepthLevel(price int64) *DepthLevel {
	return &DepthLevel{price: price}
}

// Price returns the level's price, its identity within a Depth.
func (d *DepthLevel) Price() int64 {
	return d.price
}

// OrderCount returns the number of resting orders aggregated at this price.
func (d *DepthLevel) OrderCount() int64 {
	return d.orderCount
}

// TotalQty returns the summed open quantity of all orders at this price.
func (d *DepthLevel) TotalQty() int64 {
	return d.totalQty
}

// LastChangeQty returns the signed delta of the most recent add or close.
// A partial fill does not touch it.
func (d *DepthLevel) LastChangeQty() int64 {
	return d.lastChangeQty
}

// IsEmpty checks if no quantity remains at this level.
func (d *DepthLevel) IsEmpty() bool {
	return d.totalQty == 0
}

func (d *DepthLevel) addOrder(qty int64) {
	d.orderCount++
	d.totalQty += qty
	d.lastChangeQty = qty
}

func (d *DepthLevel) closeOrder(qty int64) {
	d.orderCount--
	d.totalQty -= qty
	d.lastChangeQty = -qty
}

func (d *DepthLevel) decrease(qty int64) {
	d.totalQty -= qty
}

// priceBefore reports whether price a outranks price b on the given side.
// Market orders (price 0) rank ahead of every limit price on both sides;
// among limit prices, bids rank highest first and asks lowest first. The
// matching queues and the depth views share this ordering so a resting
// market order is always the first level of its side.
func priceBefore(bid bool, a, b int64) bool {
	if a == 0 || b == 0 {
		return a == 0 && b != 0
	}
	if bid {
		return a > b
	}
	return a < b
}

// Depth is the aggregated market-depth view of one book side, its levels kept
// in side order (best first). The max level bounds queries, not storage.
type Depth struct {
	bid      bool
	maxLevel int
	levels   []*DepthLevel
}

// NewDepth creates a Depth with the default query window.
func NewDepth(bid bool) *Depth {
	return NewDepthWithMaxLevel(bid, DefaultMaxLevel)
}

// NewDepthWithMaxLevel creates a Depth with a custom query window. A
// non-positive maxLevel falls back to the default.
func NewDepthWithMaxLevel(bid bool, maxLevel int) *Depth {
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	return &Depth{
		bid:      bid,
		maxLevel: maxLevel,
	}
}

// search returns the position price occupies (or would occupy) in side order.
func (d *Depth) search(price int64) int {
	return sort.Search(len(d.levels), func(i int) bool {
		return !priceBefore(d.bid, d.levels[i].price, price)
	})
}

// OnOrderPlaced records a newly resting order at price.
func (d *Depth) OnOrderPlaced(price, qty int64) {
	idx := d.search(price)
	if idx == len(d.levels) || d.levels[idx].price != price {
		d.levels = append(d.levels, nil)
		copy(d.levels[idx+1:], d.levels[idx:])
		d.levels[idx] = NewDepthLevel(price)
	}
	d.levels[idx].addOrder(qty)
}

// OnOrderCanceled records the removal of a resting order by cancel. Unknown
// prices are ignored.
func (d *Depth) OnOrderCanceled(price, qty int64) {
	d.closeOrder(price, qty)
}

// OnOrderFullFilled records the removal of a resting order by a full fill.
// Unknown prices are ignored.
func (d *Depth) OnOrderFullFilled(price, qty int64) {
	d.closeOrder(price, qty)
}

func (d *Depth) closeOrder(price, qty int64) {
	idx := d.search(price)
	if idx == len(d.levels) || d.levels[idx].price != price {
		return
	}
	level := d.levels[idx]
	level.closeOrder(qty)
	if level.IsEmpty() {
		d.levels = append(d.levels[:idx], d.levels[idx+1:]...)
	}
}

// OnOrderPartialFilled records a partial fill of a resting order: only the
// total quantity moves, order count and last change stay. Unknown prices are
// ignored.
func (d *Depth) OnOrderPartialFilled(price, qty int64) {
	idx := d.search(price)
	if idx == len(d.levels) || d.levels[idx].price != price {
		return
	}
	d.levels[idx].decrease(qty)
}

// IsEmpty checks if the side holds no levels.
func (d *Depth) IsEmpty() bool {
	return len(d.levels) == 0
}

// Size returns the number of levels currently held.
func (d *Depth) Size() int {
	return len(d.levels)
}

// IsBid checks if this is the bid-side depth.
func (d *Depth) IsBid() bool {
	return d.bid
}

// MaxLevel returns the query window bound.
func (d *Depth) MaxLevel() int {
	return d.maxLevel
}

// FirstLevel returns the best level of the side, or nil if the side is empty.
func (d *Depth) FirstLevel() *DepthLevel {
	return d.Level(topLevel)
}

// Level returns the n-th level in side order (1-indexed). n is clamped into
// [1, maxLevel]; nil is returned when fewer levels exist.
func (d *Depth) Level(n int) *DepthLevel {
	if n < topLevel {
		n = topLevel
	} else if n > d.maxLevel {
		n = d.maxLevel
	}
	if n > len(d.levels) {
		return nil
	}
	return d.levels[n-1]
}
