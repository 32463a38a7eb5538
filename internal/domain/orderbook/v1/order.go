package orderbookv1

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// OrderType represents the type of order request.
type OrderType string

const (
	// OrderTypeMarket represents a market order.
	OrderTypeMarket OrderType = "market"
	// OrderTypeLimit represents a limit order.
	OrderTypeLimit OrderType = "limit"
	// OrderTypeCancel represents a cancel request.
	OrderTypeCancel OrderType = "cancel"
)

// Order represents a single trade intent in the order book. Price and
// quantities are integers in the instrument's minimal unit (8.88 -> 888).
// A price of 0 encodes a market order.
type Order struct {
	ID        string `json:"id"`
	Bid       bool   `json:"bid"`
	Price     int64  `json:"price"`
	OriginQty int64  `json:"originQty"`
	OpenQty   int64  `json:"openQty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// PlaceOrderRequest represents a request flowing into the engine from the
// order stream.
type PlaceOrderRequest struct {
	OrderID string    `json:"orderID"`
	Type    OrderType `json:"type"`
	Bid     bool      `json:"bid"`
	Price   int64     `json:"price"`
	Qty     int64     `json:"qty"`
	Offset  int64     `json:"-"` // Offset of the request in the stream
}

// NewOrder creates a new order with a fresh ULID and timestamps.
func NewOrder(bid bool, price, qty int64) *Order {
	now := time.Now().UnixNano()
	return &Order{
		ID:        ulid.Make().String(),
		Bid:       bid,
		Price:     price,
		OriginQty: qty,
		OpenQty:   qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Bid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return !o.Bid
}

// IsLimit checks if the order carries a limit price. Price 0 marks a market order.
func (o *Order) IsLimit() bool {
	return o.Price > 0
}

// IsFilled checks if the order is fully filled (open quantity is zero).
func (o *Order) IsFilled() bool {
	return o.OpenQty == 0
}

// Fill reduces the open quantity by qty and refreshes the update timestamp.
func (o *Order) Fill(qty int64) {
	o.OpenQty -= qty
	o.UpdatedAt = time.Now().UnixNano()
}
