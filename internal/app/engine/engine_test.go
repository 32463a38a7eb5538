package engine

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	orderreadermock "github.com/tradekit/matching-engine/internal/domain/order-reader/v1/mock"
	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
	"github.com/tradekit/matching-engine/pkg/config"
	"github.com/tradekit/matching-engine/pkg/logger"
)

// Test fixtures and helpers
type testFixture struct {
	ctrl            *gomock.Controller
	mockOrderReader *orderreadermock.MockOrderReader
	logger          *logger.Logger
	config          *config.Config
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	return &testFixture{
		ctrl:            ctrl,
		mockOrderReader: orderreadermock.NewMockOrderReader(ctrl),
		logger:          log,
		config: &config.Config{
			Symbol: "BTC-USD",
			KafkaConfig: config.KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "orders",
			},
		},
	}
}

func createTestOrderRequest(orderID string, orderType orderbookv1.OrderType, bid bool, price, qty int64) orderbookv1.PlaceOrderRequest {
	return orderbookv1.PlaceOrderRequest{
		OrderID: orderID,
		Type:    orderType,
		Bid:     bid,
		Price:   price,
		Qty:     qty,
	}
}

func createTestEngine(t *testing.T, fixture *testFixture) *Engine {
	engine, err := NewEngine(
		fixture.mockOrderReader,
		orderbookv1.NopListener{},
		fixture.logger,
		fixture.config,
	)
	require.NoError(t, err)

	// Initialize context to prevent nil pointer dereference
	engine.ctx = context.Background()

	return engine
}

func TestNewEngine(t *testing.T) {
	fixture := setupTestFixture(t)

	engine, err := NewEngine(fixture.mockOrderReader, orderbookv1.NopListener{}, fixture.logger, fixture.config)
	require.NoError(t, err)
	assert.Equal(t, "BTC-USD", engine.Book().Symbol())
	assert.Equal(t, int64(-1), engine.GetOrderOffset())
	assert.Equal(t, int64(0), engine.GetTotalOrders())
	assert.Equal(t, int64(0), engine.GetTotalMatches())
	assert.Equal(t, 0, engine.OpenOrderCount())
}

func TestNewEngine_EmptySymbol(t *testing.T) {
	fixture := setupTestFixture(t)
	fixture.config.Symbol = ""

	_, err := NewEngine(fixture.mockOrderReader, orderbookv1.NopListener{}, fixture.logger, fixture.config)
	assert.Error(t, err)
}

func TestEngine_ProcessRequest_LimitOrder(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	request := createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 10, 100)
	err := engine.processRequest(&request)

	require.NoError(t, err)
	assert.Equal(t, int64(1), engine.GetTotalOrders())
	assert.Equal(t, 1, engine.OpenOrderCount())

	level := engine.Book().BidsDepth().FirstLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(10), level.Price())
	assert.Equal(t, int64(100), level.TotalQty())
}

func TestEngine_ProcessRequest_MatchPrunesOpenOrders(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	sell := createTestOrderRequest("sell1", orderbookv1.OrderTypeLimit, false, 10, 100)
	require.NoError(t, engine.processRequest(&sell))

	buy := createTestOrderRequest("buy1", orderbookv1.OrderTypeMarket, true, 0, 100)
	require.NoError(t, engine.processRequest(&buy))

	assert.Equal(t, int64(1), engine.GetTotalMatches())
	assert.Equal(t, int64(2), engine.GetTotalOrders())
	// both sides were consumed entirely
	assert.Equal(t, 0, engine.OpenOrderCount())
	assert.True(t, engine.Book().AsksDepth().IsEmpty())
	assert.True(t, engine.Book().BidsDepth().IsEmpty())
	assert.Equal(t, int64(10), engine.Book().MarketPrice())
}

func TestEngine_ProcessRequest_MarketOrderIgnoresPriceField(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	request := createTestOrderRequest("order1", orderbookv1.OrderTypeMarket, true, 999, 100)
	require.NoError(t, engine.processRequest(&request))

	level := engine.Book().BidsDepth().FirstLevel()
	require.NotNil(t, level)
	assert.Equal(t, int64(0), level.Price())
}

func TestEngine_ProcessRequest_Cancel(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	place := createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 10, 100)
	require.NoError(t, engine.processRequest(&place))

	cancel := createTestOrderRequest("order1", orderbookv1.OrderTypeCancel, true, 0, 0)
	require.NoError(t, engine.processRequest(&cancel))

	assert.Equal(t, 0, engine.OpenOrderCount())
	assert.True(t, engine.Book().BidsDepth().IsEmpty())

	// the order is gone, a second cancel cannot resolve it
	err := engine.processRequest(&cancel)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEngine_ProcessRequest_Validation(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	testCases := []struct {
		name    string
		request orderbookv1.PlaceOrderRequest
		wantErr error
	}{
		{
			name:    "zero quantity",
			request: createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 10, 0),
			wantErr: ErrInvalidQty,
		},
		{
			name:    "negative quantity",
			request: createTestOrderRequest("order1", orderbookv1.OrderTypeMarket, true, 0, -5),
			wantErr: ErrInvalidQty,
		},
		{
			name:    "limit order without price",
			request: createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 0, 100),
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "cancel for unknown order",
			request: createTestOrderRequest("missing", orderbookv1.OrderTypeCancel, true, 0, 0),
			wantErr: ErrOrderNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.processRequest(&tc.request)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("unknown request type", func(t *testing.T) {
		request := createTestOrderRequest("order1", orderbookv1.OrderType("weird"), true, 10, 100)
		assert.Error(t, engine.processRequest(&request))
	})
}

func TestEngine_ProcessRequest_DuplicateOrderID(t *testing.T) {
	fixture := setupTestFixture(t)
	engine := createTestEngine(t, fixture)

	request := createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 10, 100)
	require.NoError(t, engine.processRequest(&request))

	duplicate := createTestOrderRequest("order1", orderbookv1.OrderTypeLimit, true, 11, 50)
	err := engine.processRequest(&duplicate)
	assert.ErrorIs(t, err, ErrDuplicateOrder)
	assert.Equal(t, int64(1), engine.GetTotalOrders())
}

func TestEngine_StartStop(t *testing.T) {
	fixture := setupTestFixture(t)

	engine, err := NewEngineWithOptions(
		fixture.mockOrderReader,
		orderbookv1.NopListener{},
		fixture.logger,
		fixture.config,
		&Options{ReadBackoff: time.Millisecond, DepthLevels: orderbookv1.DefaultMaxLevel},
	)
	require.NoError(t, err)

	// the reader blocks until the engine context is canceled
	fixture.mockOrderReader.EXPECT().
		ReadMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
			<-ctx.Done()
			return kafka.Message{}, nil, ctx.Err()
		}).
		AnyTimes()
	fixture.mockOrderReader.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, engine.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, engine.Stop(stopCtx))
}

func TestEngine_ProcessesStreamedRequests(t *testing.T) {
	fixture := setupTestFixture(t)

	engine, err := NewEngineWithOptions(
		fixture.mockOrderReader,
		orderbookv1.NopListener{},
		fixture.logger,
		fixture.config,
		&Options{ReadBackoff: time.Millisecond, DepthLevels: orderbookv1.DefaultMaxLevel},
	)
	require.NoError(t, err)

	requests := []orderbookv1.PlaceOrderRequest{
		createTestOrderRequest("sell1", orderbookv1.OrderTypeLimit, false, 10, 100),
		createTestOrderRequest("buy1", orderbookv1.OrderTypeLimit, true, 10, 60),
	}

	reads := 0
	fixture.mockOrderReader.EXPECT().
		ReadMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, *orderbookv1.PlaceOrderRequest, error) {
			if reads < len(requests) {
				request := requests[reads]
				msg := kafka.Message{Offset: int64(reads)}
				reads++
				return msg, &request, nil
			}
			<-ctx.Done()
			return kafka.Message{}, nil, ctx.Err()
		}).
		AnyTimes()
	fixture.mockOrderReader.EXPECT().
		CommitMessages(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	fixture.mockOrderReader.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, engine.Start(context.Background()))

	require.Eventually(t, func() bool {
		return engine.GetTotalMatches() == 1
	}, 5*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, engine.Stop(stopCtx))

	assert.Equal(t, int64(2), engine.GetTotalOrders())
	assert.Equal(t, int64(1), engine.GetOrderOffset())
	// the partially filled sell was canceled by Close during Stop
	assert.Equal(t, 0, engine.OpenOrderCount())
	assert.True(t, engine.Book().AsksDepth().IsEmpty())
}
