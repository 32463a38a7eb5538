package orderreaderv1

import (
	"context"

	"github.com/segmentio/kafka-go"

	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
)

// OrderReader consumes order requests from the order stream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderreaderv1_mock
type OrderReader interface {
	SetOffset(offset int64) error
	ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
