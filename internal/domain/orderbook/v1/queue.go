package orderbookv1

import "sort"

// OrderQueue holds one book side's resting orders ranked by matching
// priority: market orders first, then best limit price, strict arrival order
// within a price. It shares the priceBefore ordering with Depth.
type OrderQueue struct {
	bid    bool
	levels []*queueLevel
	index  map[string]*queueLevel // order ID -> level holding it
}

type queueLevel struct {
	price  int64
	orders []*Order
}

// NewOrderQueue creates an empty queue for one side.
func NewOrderQueue(bid bool) *OrderQueue {
	return &OrderQueue{
		bid:   bid,
		index: make(map[string]*queueLevel),
	}
}

func (q *OrderQueue) search(price int64) int {
	return sort.Search(len(q.levels), func(i int) bool {
		return !priceBefore(q.bid, q.levels[i].price, price)
	})
}

// Push inserts an order at the tail of its price rank.
func (q *OrderQueue) Push(order *Order) {
	idx := q.search(order.Price)
	if idx == len(q.levels) || q.levels[idx].price != order.Price {
		q.levels = append(q.levels, nil)
		copy(q.levels[idx+1:], q.levels[idx:])
		q.levels[idx] = &queueLevel{price: order.Price}
	}
	level := q.levels[idx]
	level.orders = append(level.orders, order)
	q.index[order.ID] = level
}

// Remove detaches an order by identity. It reports whether the order was
// resting in the queue.
func (q *OrderQueue) Remove(order *Order) bool {
	level, ok := q.index[order.ID]
	if !ok {
		return false
	}
	for i, resting := range level.orders {
		if resting == order {
			level.orders = append(level.orders[:i], level.orders[i+1:]...)
			delete(q.index, order.ID)
			if len(level.orders) == 0 {
				q.dropLevel(level.price)
			}
			return true
		}
	}
	return false
}

func (q *OrderQueue) dropLevel(price int64) {
	idx := q.search(price)
	if idx < len(q.levels) && q.levels[idx].price == price {
		q.levels = append(q.levels[:idx], q.levels[idx+1:]...)
	}
}

// Peek returns the highest-priority resting order, or nil if the side is empty.
func (q *OrderQueue) Peek() *Order {
	if len(q.levels) == 0 {
		return nil
	}
	return q.levels[0].orders[0]
}

// IsEmpty checks if no orders are resting.
func (q *OrderQueue) IsEmpty() bool {
	return len(q.levels) == 0
}

// Len returns the number of resting orders.
func (q *OrderQueue) Len() int {
	return len(q.index)
}

// Orders returns a snapshot of all resting orders in priority order.
func (q *OrderQueue) Orders() []*Order {
	orders := make([]*Order, 0, len(q.index))
	for _, level := range q.levels {
		orders = append(orders, level.orders...)
	}
	return orders
}

// Iterate returns an iterator positioned before the first order.
func (q *OrderQueue) Iterate() *Iterator {
	return &Iterator{q: q, oi: -1}
}

// Iterator walks a queue in matching priority order. Remove detaches the
// order most recently returned by Next without invalidating the walk.
type Iterator struct {
	q  *OrderQueue
	li int
	oi int
}

// Next advances and returns the next resting order, or nil when exhausted.
func (it *Iterator) Next() *Order {
	it.oi++
	for it.li < len(it.q.levels) && it.oi >= len(it.q.levels[it.li].orders) {
		it.li++
		it.oi = 0
	}
	if it.li >= len(it.q.levels) {
		return nil
	}
	return it.q.levels[it.li].orders[it.oi]
}

// Remove detaches the order last returned by Next. Calling it before the
// first Next, or twice for the same order, corrupts the walk.
func (it *Iterator) Remove() {
	level := it.q.levels[it.li]
	order := level.orders[it.oi]
	level.orders = append(level.orders[:it.oi], level.orders[it.oi+1:]...)
	delete(it.q.index, order.ID)
	if len(level.orders) == 0 {
		it.q.levels = append(it.q.levels[:it.li], it.q.levels[it.li+1:]...)
		it.oi = -1
	} else {
		it.oi--
	}
}
