package engine

import (
	"time"

	orderbookv1 "github.com/tradekit/matching-engine/internal/domain/orderbook/v1"
)

// Options represents configuration options for the Engine.
type Options struct {
	ReadBackoff time.Duration
	DepthLevels int
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		ReadBackoff: 100 * time.Millisecond,
		DepthLevels: orderbookv1.DefaultMaxLevel,
	}
}
