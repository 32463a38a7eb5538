package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	orderreaderv1 "github.com/tradekit/matching-engine/internal/domain/order-reader/v1"
	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradekit/matching-engine/internal/usecase/orderbook"
	"github.com/tradekit/matching-engine/pkg/config"
	"github.com/tradekit/matching-engine/pkg/logger"
)

var (
	// ErrInvalidQty is returned for a place request without a positive quantity.
	ErrInvalidQty = errors.New("quantity must be positive")
	// ErrInvalidPrice is returned for a limit request without a positive price.
	ErrInvalidPrice = errors.New("limit price must be positive")
	// ErrDuplicateOrder is returned when a place request reuses an open order ID.
	ErrDuplicateOrder = errors.New("order ID already open")
	// ErrOrderNotFound is returned when a cancel request targets no open order.
	ErrOrderNotFound = errors.New("order not found")
)

// Engine drives a single order book from the order stream. The book itself is
// not synchronized, so one processor goroutine owns every mutation; the engine
// is the single writer the book's contract asks for.
type Engine struct {
	book        *orderbook.Book
	orderReader orderreaderv1.OrderReader
	listener    orderbookv1.Listener
	logger      *logger.Logger
	config      *config.Config

	// open orders by ID, so cancel requests can resolve to the resting order.
	// Touched only by the processor goroutine and its synchronous callbacks.
	open map[string]*orderbookv1.Order

	mu           sync.RWMutex
	orderOffset  int64
	totalOrders  int64
	totalMatches int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	readBackoff time.Duration
}

// NewEngine creates a new Engine with default options. Engine events flow to
// listener after the engine's own bookkeeping.
func NewEngine(
	orderReader orderreaderv1.OrderReader,
	listener orderbookv1.Listener,
	logger *logger.Logger,
	config *config.Config,
) (*Engine, error) {
	return NewEngineWithOptions(orderReader, listener, logger, config, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new Engine with custom options.
func NewEngineWithOptions(
	orderReader orderreaderv1.OrderReader,
	listener orderbookv1.Listener,
	logger *logger.Logger,
	config *config.Config,
	options *Options,
) (*Engine, error) {
	e := &Engine{
		orderReader: orderReader,
		listener:    listener,
		logger:      logger,
		config:      config,

		open:        make(map[string]*orderbookv1.Order),
		orderOffset: -1,
		readBackoff: options.ReadBackoff,
	}

	// The engine sits in the listener chain so it can prune its open-order
	// table before events reach the downstream sink.
	book, err := orderbook.NewBookWithMaxLevel(config.Symbol, e, options.DepthLevels)
	if err != nil {
		return nil, err
	}
	e.book = book

	return e, nil
}

// Start initializes the engine and starts the order processor.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.book.Open()

	e.wg.Add(1)
	go e.runOrderProcessor()

	e.logger.Info("Engine started", logger.Field{
		Key:   "symbol",
		Value: e.config.Symbol,
	})

	return nil
}

// Stop gracefully shuts down the engine and closes the book, canceling every
// resting order.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.book.Close()
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads and processes order requests in a single goroutine.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor", logger.Field{
		Key:   "symbol",
		Value: e.config.Symbol,
	})

	if currentOffset := e.getOrderOffset(); currentOffset >= 0 {
		if err := e.orderReader.SetOffset(currentOffset + 1); err != nil {
			e.logger.GetZap().Fatal("Failed to set offset for order reader", zapcore.Field{
				Key:       "error",
				Interface: err,
			})
		}
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, orderRequest, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.Error(err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				// Simple backoff
				time.Sleep(e.readBackoff)
				continue
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.Error(err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			if err := e.processRequest(orderRequest); err != nil {
				e.logger.Error(err,
					logger.Field{Key: "action", Value: "process_order"},
					logger.Field{Key: "orderID", Value: orderRequest.OrderID},
					logger.Field{Key: "type", Value: orderRequest.Type},
				)
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// processRequest applies a single order request to the book.
func (e *Engine) processRequest(request *orderbookv1.PlaceOrderRequest) error {
	e.logger.Debug("Processing order request",
		logger.Field{Key: "offset", Value: request.Offset},
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "bid", Value: request.Bid},
	)

	switch request.Type {
	case orderbookv1.OrderTypeLimit, orderbookv1.OrderTypeMarket:
		return e.placeOrder(request)
	case orderbookv1.OrderTypeCancel:
		order, ok := e.open[request.OrderID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, request.OrderID)
		}
		e.book.Cancel(order)
		return nil
	default:
		return fmt.Errorf("unknown order type %q", request.Type)
	}
}

func (e *Engine) placeOrder(request *orderbookv1.PlaceOrderRequest) error {
	if request.Qty <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQty, request.Qty)
	}

	price := request.Price
	if request.Type == orderbookv1.OrderTypeMarket {
		price = 0
	} else if price <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPrice, price)
	}

	order := orderbookv1.NewOrder(request.Bid, price, request.Qty)
	if request.OrderID != "" {
		order.ID = request.OrderID
	}
	if _, exists := e.open[order.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, order.ID)
	}

	e.open[order.ID] = order
	e.book.Place(order)
	if order.IsFilled() {
		// consumed entirely on arrival, nothing rests
		delete(e.open, order.ID)
	}

	e.mu.Lock()
	e.totalOrders++
	e.mu.Unlock()

	return nil
}

// OnAccepted implements orderbookv1.Listener.
func (e *Engine) OnAccepted(order *orderbookv1.Order) {
	e.listener.OnAccepted(order)
}

// OnRejected implements orderbookv1.Listener.
func (e *Engine) OnRejected(order *orderbookv1.Order, reason string) {
	delete(e.open, order.ID)
	e.listener.OnRejected(order, reason)
}

// OnMatched implements orderbookv1.Listener.
func (e *Engine) OnMatched(order, opposite *orderbookv1.Order, price, qty int64) {
	e.mu.Lock()
	e.totalMatches++
	e.mu.Unlock()
	e.listener.OnMatched(order, opposite, price, qty)
}

// OnLastPriceChanged implements orderbookv1.Listener.
func (e *Engine) OnLastPriceChanged(price int64) {
	e.listener.OnLastPriceChanged(price)
}

// OnFullFilled implements orderbookv1.Listener.
func (e *Engine) OnFullFilled(order *orderbookv1.Order) {
	delete(e.open, order.ID)
	e.listener.OnFullFilled(order)
}

// OnCanceled implements orderbookv1.Listener.
func (e *Engine) OnCanceled(order *orderbookv1.Order) {
	delete(e.open, order.ID)
	e.listener.OnCanceled(order)
}

// OnCancelRejected implements orderbookv1.Listener.
func (e *Engine) OnCancelRejected(order *orderbookv1.Order, reason string) {
	e.listener.OnCancelRejected(order, reason)
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

// Book returns the engine's order book for read-only queries. Queries are
// only safe while no mutation is in flight, i.e. before Start or after Stop,
// or from the listener chain.
func (e *Engine) Book() *orderbook.Book {
	return e.book
}

// GetOrderOffset returns the stream offset of the last processed request.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetTotalOrders returns the total number of orders placed into the book.
func (e *Engine) GetTotalOrders() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalOrders
}

// GetTotalMatches returns the total number of executions since start.
func (e *Engine) GetTotalMatches() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalMatches
}

// OpenOrderCount returns the number of orders currently resting in the book.
func (e *Engine) OpenOrderCount() int {
	return len(e.open)
}
