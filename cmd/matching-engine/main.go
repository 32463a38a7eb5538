package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/tradekit/matching-engine/internal/app/engine"
	eventpublisher "github.com/tradekit/matching-engine/internal/usecase/event-publisher"
	orderreader "github.com/tradekit/matching-engine/internal/usecase/order-reader"
	"github.com/tradekit/matching-engine/pkg/config"
	"github.com/tradekit/matching-engine/pkg/logger"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg = &config.Config{}
	err = config.Load(cfg)
	if err != nil {
		panic(err)
	}

	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = logger
}

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize components
	reader := orderreader.NewReader(cfg.KafkaConfig, *log)
	publisher := eventpublisher.NewPublisher(cfg.EventPublisher, cfg.Symbol, *log)

	engine, err := app.NewEngineWithOptions(reader, publisher, log, cfg, &app.Options{
		ReadBackoff: cfg.ReadBackoff,
		DepthLevels: cfg.DepthLevels,
	})
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "create_engine",
		})
		return
	}

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching engine started successfully", logger.Field{
		Key:   "symbol",
		Value: cfg.Symbol,
	})

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	// Cancel the main context to signal shutdown
	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the engine gracefully
	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_event_publisher",
		})
	}

	log.Info("Matching engine shutdown complete")
}
