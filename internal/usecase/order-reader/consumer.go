package orderreader

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradekit/matching-engine/pkg/config"
	"github.com/tradekit/matching-engine/pkg/logger"
)

// Reader represents a Kafka Reader for consuming messages from the order topic.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Logger
}

// NewReader creates a new Kafka reader for consuming messages from the order
// topic. It returns an implementation of the OrderReader interface.
func NewReader(config config.KafkaConfig, log logger.Logger) Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// logError is a helper method to log errors consistently
func (r Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadMessage reads a message from the Kafka topic and parses it as a
// PlaceOrderRequest.
func (r Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{Offset: 0}, nil, err
	}

	var request orderbookv1.PlaceOrderRequest
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalOrderRequest")
		return kafka.Message{Offset: 0}, nil, err
	}

	r.logger.Debug("ReadMessage",
		logger.Field{
			Key:   "orderID",
			Value: request.OrderID,
		},
		logger.Field{
			Key:   "type",
			Value: request.Type,
		},
		logger.Field{
			Key:   "bid",
			Value: request.Bid,
		},
		logger.Field{
			Key:   "price",
			Value: request.Price,
		},
		logger.Field{
			Key:   "qty",
			Value: request.Qty,
		},
	)

	request.Offset = msg.Offset // Set the offset in the order request

	return msg, &request, nil
}

// Close properly closes the Kafka reader.
func (r Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages is a no-op: the reader is bound to an explicit partition
// offset managed by the engine, not a consumer group.
func (r Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}
