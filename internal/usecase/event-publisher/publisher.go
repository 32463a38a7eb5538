package eventpublisher

import (
	"context"

	"github.com/segmentio/kafka-go"

	eventv1 "github.com/tradekit/matching-engine/internal/domain/event/v1"
	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradekit/matching-engine/pkg/config"
	"github.com/tradekit/matching-engine/pkg/logger"
)

// Publisher is an order book Listener that publishes every engine event to a
// Kafka topic. It implements orderbookv1.Listener; callbacks run on the
// engine's dispatch goroutine, so writes happen inline in stream order.
type Publisher struct {
	symbol      string
	kafkaWriter *kafka.Writer
	logger      logger.Logger
}

// NewPublisher creates a new Kafka publisher for engine events.
func NewPublisher(config config.EventPublisher, symbol string, logger logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.Topic,
	})

	return &Publisher{
		symbol:      symbol,
		kafkaWriter: kafkaWriter,
		logger:      logger,
	}
}

// OnAccepted implements orderbookv1.Listener.
func (p *Publisher) OnAccepted(order *orderbookv1.Order) {
	p.publish(eventv1.NewOrderEvent(p.symbol, eventv1.TypeAccepted, order, ""))
}

// OnRejected implements orderbookv1.Listener.
func (p *Publisher) OnRejected(order *orderbookv1.Order, reason string) {
	p.publish(eventv1.NewOrderEvent(p.symbol, eventv1.TypeRejected, order, reason))
}

// OnMatched implements orderbookv1.Listener.
func (p *Publisher) OnMatched(order, opposite *orderbookv1.Order, price, qty int64) {
	p.publish(eventv1.NewMatchEvent(p.symbol, order, opposite, price, qty))
}

// OnLastPriceChanged implements orderbookv1.Listener.
func (p *Publisher) OnLastPriceChanged(price int64) {
	p.publish(eventv1.NewLastPriceEvent(p.symbol, price))
}

// OnFullFilled implements orderbookv1.Listener.
func (p *Publisher) OnFullFilled(order *orderbookv1.Order) {
	p.publish(eventv1.NewOrderEvent(p.symbol, eventv1.TypeFullFilled, order, ""))
}

// OnCanceled implements orderbookv1.Listener.
func (p *Publisher) OnCanceled(order *orderbookv1.Order) {
	p.publish(eventv1.NewOrderEvent(p.symbol, eventv1.TypeCanceled, order, ""))
}

// OnCancelRejected implements orderbookv1.Listener.
func (p *Publisher) OnCancelRejected(order *orderbookv1.Order, reason string) {
	p.publish(eventv1.NewOrderEvent(p.symbol, eventv1.TypeCancelRejected, order, reason))
}

func (p *Publisher) publish(event *eventv1.Payload) {
	msg := kafka.Message{
		Value: eventv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "error", Value: err.Error()},
			logger.Field{Key: "event", Value: event},
		)
	}
}

// Close closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
