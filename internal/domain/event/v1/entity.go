package eventv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
)

// Type enumerates the engine event kinds carried on the event topic.
type Type string

const (
	// TypeAccepted marks an order that passed entry validation.
	TypeAccepted Type = "accepted"
	// TypeRejected marks an order that failed entry validation.
	TypeRejected Type = "rejected"
	// TypeMatched marks one individual execution.
	TypeMatched Type = "matched"
	// TypeLastPriceChanged marks a change of the last traded price.
	TypeLastPriceChanged Type = "last_price_changed"
	// TypeFullFilled marks a resting order whose open quantity reached zero.
	TypeFullFilled Type = "full_filled"
	// TypeCanceled marks a resting order removed by cancel.
	TypeCanceled Type = "canceled"
	// TypeCancelRejected marks a cancel that targeted an unknown order.
	TypeCancelRejected Type = "cancel_rejected"
)

// Payload is the wire form of one engine event.
type Payload struct {
	Symbol       string `json:"symbol"`
	Type         Type   `json:"type"`
	OrderID      string `json:"orderID,omitempty"`
	TakerOrderID string `json:"takerOrderID,omitempty"`
	MakerOrderID string `json:"makerOrderID,omitempty"`
	Price        int64  `json:"price,omitempty"`
	Qty          int64  `json:"qty,omitempty"`
	OpenQty      int64  `json:"openQty,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// NewOrderEvent builds a payload for a single-order life-cycle event.
func NewOrderEvent(symbol string, typ Type, order *orderbookv1.Order, reason string) *Payload {
	return &Payload{
		Symbol:    symbol,
		Type:      typ,
		OrderID:   order.ID,
		Price:     order.Price,
		OpenQty:   order.OpenQty,
		Reason:    reason,
		Timestamp: time.Now().UnixNano(),
	}
}

// NewMatchEvent builds a payload for one execution between the incoming
// (taker) and resting (maker) order.
func NewMatchEvent(symbol string, taker, maker *orderbookv1.Order, price, qty int64) *Payload {
	return &Payload{
		Symbol:       symbol,
		Type:         TypeMatched,
		TakerOrderID: taker.ID,
		MakerOrderID: maker.ID,
		Price:        price,
		Qty:          qty,
		Timestamp:    time.Now().UnixNano(),
	}
}

// NewLastPriceEvent builds a payload for a last traded price change.
func NewLastPriceEvent(symbol string, price int64) *Payload {
	return &Payload{
		Symbol:    symbol,
		Type:      TypeLastPriceChanged,
		Price:     price,
		Timestamp: time.Now().UnixNano(),
	}
}

// ToBytes converts the payload to a byte array.
func ToBytes(payload *Payload) []byte {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return buf
}

// FromBytes converts a byte array to a payload.
func FromBytes(data []byte) *Payload {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return &payload
}
