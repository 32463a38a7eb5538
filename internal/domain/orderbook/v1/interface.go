package orderbookv1

// OrderBook is the matching engine surface for a single instrument. All
// mutating calls must be serialized by the caller; the implementations are
// not internally synchronized.
type OrderBook interface {
	// Open is a lifecycle hook reserved for future initialization.
	Open()
	// Close cancels every currently resting order on both sides.
	Close()
	// Symbol returns the instrument identifier the book was built for.
	Symbol() string
	// Place matches an incoming order and rests any remainder.
	Place(order *Order)
	// Cancel removes a resting order by identity.
	Cancel(order *Order)
	// Spread returns best ask price minus best bid price, substituting 0 for
	// an empty side.
	Spread() int64
	// MarketPrice returns the last traded price, 0 until the first trade.
	MarketPrice() int64
	// BidsDepth returns the bid-side depth aggregate.
	BidsDepth() *Depth
	// AsksDepth returns the ask-side depth aggregate.
	AsksDepth() *Depth
}
