package orderbook

import (
	"errors"

	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
)

var (
	// ErrEmptySymbol is returned when a book is constructed without an instrument symbol.
	ErrEmptySymbol = errors.New("symbol cannot be empty")
	// ErrNilListener is returned when a book is constructed without a listener.
	ErrNilListener = errors.New("listener cannot be nil")
)

// Book is a single-instrument limit order book matching incoming orders
// against resting opposite-side orders under price-time priority. It is not
// internally synchronized: Place, Cancel and Close must be treated as one
// critical section by the caller, e.g. driven from a single goroutine.
type Book struct {
	symbol      string
	listener    orderbookv1.Listener
	bids        *orderbookv1.OrderQueue
	asks        *orderbookv1.OrderQueue
	bidsDepth   *orderbookv1.Depth
	asksDepth   *orderbookv1.Depth
	marketPrice int64
}

// NewBook creates a book for symbol reporting events to listener.
func NewBook(symbol string, listener orderbookv1.Listener) (*Book, error) {
	return NewBookWithMaxLevel(symbol, listener, orderbookv1.DefaultMaxLevel)
}

// NewBookWithMaxLevel creates a book whose depth views answer level queries
// up to maxLevel.
func NewBookWithMaxLevel(symbol string, listener orderbookv1.Listener, maxLevel int) (*Book, error) {
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if listener == nil {
		return nil, ErrNilListener
	}
	return &Book{
		symbol:    symbol,
		listener:  listener,
		bids:      orderbookv1.NewOrderQueue(true),
		asks:      orderbookv1.NewOrderQueue(false),
		bidsDepth: orderbookv1.NewDepthWithMaxLevel(true, maxLevel),
		asksDepth: orderbookv1.NewDepthWithMaxLevel(false, maxLevel),
	}, nil
}

// Open implements orderbookv1.OrderBook. It does nothing yet.
func (b *Book) Open() {}

// Close cancels every currently resting order on both sides.
func (b *Book) Close() {
	// cancel mutates the live queues, snapshot first
	for _, order := range b.bids.Orders() {
		b.Cancel(order)
	}
	for _, order := range b.asks.Orders() {
		b.Cancel(order)
	}
}

// Symbol returns the instrument identifier the book was built for.
func (b *Book) Symbol() string {
	return b.symbol
}

// Place accepts an incoming order and runs it through matching. An order that
// is already fully filled on entry is rejected and has no further effect.
func (b *Book) Place(order *orderbookv1.Order) {
	if order.IsFilled() {
		b.listener.OnRejected(order, "order is full filled")
		return
	}
	b.listener.OnAccepted(order)
	b.matchOrder(order)
}

func (b *Book) matchOrder(incoming *orderbookv1.Order) {
	opposite, own := b.asks, b.bids
	if incoming.IsAsk() {
		opposite, own = b.bids, b.asks
	}

	if opposite.IsEmpty() {
		b.rest(own, incoming)
		return
	}

	it := opposite.Iterate()
	for !incoming.IsFilled() {
		resting := it.Next()
		if resting == nil {
			break
		}
		// Resting orders arrive best price first, so the first one that
		// cannot execute ends the scan.
		if !executable(incoming, resting) {
			break
		}

		price, ok := b.crossPrice(incoming, resting)
		if !ok {
			// Both orders are market orders and no trade has ever set a
			// market price. Leave this one resting and try the next.
			continue
		}

		qty := min(incoming.OpenQty, resting.OpenQty)
		incoming.Fill(qty)
		resting.Fill(qty)
		b.marketPrice = price

		b.listener.OnMatched(incoming, resting, price, qty)
		b.listener.OnLastPriceChanged(price)

		if resting.IsFilled() {
			it.Remove()
			b.listener.OnFullFilled(resting)
			b.depthOf(resting).OnOrderFullFilled(resting.Price, qty)
		} else {
			b.depthOf(resting).OnOrderPartialFilled(resting.Price, qty)
		}
	}

	if !incoming.IsFilled() {
		b.rest(own, incoming)
	}
}

func (b *Book) rest(own *orderbookv1.OrderQueue, order *orderbookv1.Order) {
	own.Push(order)
	b.depthOf(order).OnOrderPlaced(order.Price, order.OpenQty)
}

func (b *Book) depthOf(order *orderbookv1.Order) *orderbookv1.Depth {
	if order.IsBid() {
		return b.bidsDepth
	}
	return b.asksDepth
}

// executable reports whether the incoming order can trade against the
// resting one: equal prices always execute; an incoming buy executes when it
// is a market order or bids at least the resting price; an incoming sell
// executes when the resting order is a market order or the incoming price is
// at most the resting price.
func executable(incoming, resting *orderbookv1.Order) bool {
	if incoming.Price == resting.Price {
		return true
	}
	if incoming.IsBid() {
		return !incoming.IsLimit() || incoming.Price >= resting.Price
	}
	return !resting.IsLimit() || incoming.Price <= resting.Price
}

// crossPrice resolves the price two executable orders trade at: the resting
// limit price, else the incoming limit price, else the last market price.
// When both orders are market orders and no trade has occurred yet there is
// no price to trade at.
func (b *Book) crossPrice(incoming, resting *orderbookv1.Order) (int64, bool) {
	switch {
	case resting.IsLimit():
		return resting.Price, true
	case incoming.IsLimit():
		return incoming.Price, true
	case b.marketPrice > 0:
		return b.marketPrice, true
	default:
		return 0, false
	}
}

// Cancel removes a resting order by identity. A cancel for an order not in
// the book (already matched away, already canceled, or never placed) is
// reported as rejected and changes nothing.
func (b *Book) Cancel(order *orderbookv1.Order) {
	holds := b.bids
	if order.IsAsk() {
		holds = b.asks
	}
	if holds.Remove(order) {
		b.listener.OnCanceled(order)
		b.depthOf(order).OnOrderCanceled(order.Price, order.OpenQty)
	} else {
		b.listener.OnCancelRejected(order, "order not found")
	}
}

// Spread returns the best ask price minus the best bid price, substituting 0
// for an empty side. With exactly one side populated the result is the other
// side's signed best price rather than a meaningful spread.
func (b *Book) Spread() int64 {
	var lowestAsk, highestBid int64
	if order := b.asks.Peek(); order != nil {
		lowestAsk = order.Price
	}
	if order := b.bids.Peek(); order != nil {
		highestBid = order.Price
	}
	return lowestAsk - highestBid
}

// MarketPrice returns the last traded price, 0 until the first trade.
func (b *Book) MarketPrice() int64 {
	return b.marketPrice
}

// BidsDepth returns the bid-side depth aggregate.
func (b *Book) BidsDepth() *orderbookv1.Depth {
	return b.bidsDepth
}

// AsksDepth returns the ask-side depth aggregate.
func (b *Book) AsksDepth() *orderbookv1.Depth {
	return b.asksDepth
}
