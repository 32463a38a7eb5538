package orderbookv1

// Listener receives the order book's life-cycle and match events. Callbacks
// run synchronously on the goroutine driving the book and are never invoked
// concurrently; return values are not consulted, so implementations must not
// block if throughput matters.
type Listener interface {
	// OnAccepted fires when an order passes entry validation.
	OnAccepted(order *Order)

	// OnRejected fires when an order fails entry validation.
	OnRejected(order *Order, reason string)

	// OnMatched fires once per individual execution, with the incoming and
	// resting order, the crossing price and the executed quantity.
	OnMatched(order, opposite *Order, price, qty int64)

	// OnLastPriceChanged fires alongside every OnMatched.
	OnLastPriceChanged(price int64)

	// OnFullFilled fires when a resting order's open quantity reaches zero.
	OnFullFilled(order *Order)

	// OnCanceled fires when a resting order is removed by a cancel.
	OnCanceled(order *Order)

	// OnCancelRejected fires when a cancel targets an order not in the book.
	OnCancelRejected(order *Order, reason string)
}

// NopListener is an empty Listener. Embed it to implement only the callbacks
// you care about.
type NopListener struct{}

// OnAccepted implements Listener.
func (NopListener) OnAccepted(*Order) {}

// OnRejected implements Listener.
func (NopListener) OnRejected(*Order, string) {}

// OnMatched implements Listener.
func (NopListener) OnMatched(_, _ *Order, _, _ int64) {}

// OnLastPriceChanged implements Listener.
func (NopListener) OnLastPriceChanged(int64) {}

// OnFullFilled implements Listener.
func (NopListener) OnFullFilled(*Order) {}

// OnCanceled implements Listener.
func (NopListener) OnCanceled(*Order) {}

// OnCancelRejected implements Listener.
func (NopListener) OnCancelRejected(*Order, string) {}
