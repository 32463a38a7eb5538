package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuePrices(q *OrderQueue) []int64 {
	var prices []int64
	for _, order := range q.Orders() {
		prices = append(prices, order.Price)
	}
	return prices
}

func TestNewOrderQueue(t *testing.T) {
	q := NewOrderQueue(true)

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Peek())
}

func TestOrderQueue_PriorityOrder(t *testing.T) {
	testCases := []struct {
		name   string
		bid    bool
		prices []int64
		want   []int64
	}{
		{
			name:   "bids match highest price first",
			bid:    true,
			prices: []int64{100, 300, 200},
			want:   []int64{300, 200, 100},
		},
		{
			name:   "asks match lowest price first",
			bid:    false,
			prices: []int64{200, 100, 300},
			want:   []int64{100, 200, 300},
		},
		{
			name:   "market orders outrank every limit price on the bid side",
			bid:    true,
			prices: []int64{300, 0, 100},
			want:   []int64{0, 300, 100},
		},
		{
			name:   "market orders outrank every limit price on the ask side",
			bid:    false,
			prices: []int64{300, 0, 100},
			want:   []int64{0, 100, 300},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewOrderQueue(tc.bid)
			for _, price := range tc.prices {
				q.Push(NewOrder(tc.bid, price, 10))
			}

			assert.Equal(t, tc.want, queuePrices(q))
			require.NotNil(t, q.Peek())
			assert.Equal(t, tc.want[0], q.Peek().Price)
		})
	}
}

func TestOrderQueue_FIFOWithinPrice(t *testing.T) {
	q := NewOrderQueue(true)

	first := NewOrder(true, 100, 10)
	second := NewOrder(true, 100, 20)
	third := NewOrder(true, 100, 30)
	q.Push(first)
	q.Push(second)
	q.Push(third)

	orders := q.Orders()
	require.Len(t, orders, 3)
	assert.Same(t, first, orders[0])
	assert.Same(t, second, orders[1])
	assert.Same(t, third, orders[2])
}

func TestOrderQueue_Remove(t *testing.T) {
	q := NewOrderQueue(false)

	order := NewOrder(false, 100, 10)
	other := NewOrder(false, 100, 20)
	q.Push(order)
	q.Push(other)

	assert.True(t, q.Remove(order))
	assert.Equal(t, 1, q.Len())
	assert.Same(t, other, q.Peek())

	// removing again fails, the order is gone
	assert.False(t, q.Remove(order))

	// draining the level drops it
	assert.True(t, q.Remove(other))
	assert.True(t, q.IsEmpty())
}

func TestOrderQueue_RemoveUnknownOrder(t *testing.T) {
	q := NewOrderQueue(true)
	q.Push(NewOrder(true, 100, 10))

	stranger := NewOrder(true, 100, 10)
	assert.False(t, q.Remove(stranger))
	assert.Equal(t, 1, q.Len())
}

func TestOrderQueue_Iterator(t *testing.T) {
	q := NewOrderQueue(false)

	cheap := NewOrder(false, 100, 10)
	mid := NewOrder(false, 200, 20)
	dear := NewOrder(false, 300, 30)
	q.Push(mid)
	q.Push(dear)
	q.Push(cheap)

	it := q.Iterate()
	assert.Same(t, cheap, it.Next())
	assert.Same(t, mid, it.Next())
	assert.Same(t, dear, it.Next())
	assert.Nil(t, it.Next())
}

func TestOrderQueue_IteratorRemove(t *testing.T) {
	q := NewOrderQueue(false)

	first := NewOrder(false, 100, 10)
	second := NewOrder(false, 100, 20)
	third := NewOrder(false, 200, 30)
	q.Push(first)
	q.Push(second)
	q.Push(third)

	it := q.Iterate()
	require.Same(t, first, it.Next())
	it.Remove()

	// the walk continues with the next order in priority order
	require.Same(t, second, it.Next())
	it.Remove()

	// removing the last order of a level drops the level mid-walk
	require.Same(t, third, it.Next())
	it.Remove()
	assert.Nil(t, it.Next())

	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())
}

func TestOrderQueue_IteratorSkipsNothingAfterMidLevelRemove(t *testing.T) {
	q := NewOrderQueue(true)

	first := NewOrder(true, 100, 10)
	second := NewOrder(true, 100, 20)
	lower := NewOrder(true, 50, 30)
	q.Push(first)
	q.Push(second)
	q.Push(lower)

	it := q.Iterate()
	require.Same(t, first, it.Next())

	// skip first (leave it resting), remove second, continue into next level
	require.Same(t, second, it.Next())
	it.Remove()
	require.Same(t, lower, it.Next())
	assert.Nil(t, it.Next())

	assert.Equal(t, []int64{100, 50}, queuePrices(q))
}
