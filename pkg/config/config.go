package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err // Return error if environment variable parsing fails
	}

	return nil
}

// Config holds the configuration for the application
type Config struct {
	Symbol         string                `env:"SYMBOL,required"` // Instrument the book trades, e.g. BTC-USD
	KafkaConfig    `envPrefix:"KAFKA_"`  // Kafka consumer configuration
	EventPublisher `envPrefix:"EVENTS_"` // Kafka event publisher configuration
	EngineConfig   `envPrefix:"ENGINE_"` // Engine runtime configuration
}

// KafkaConfig holds the configuration for the Kafka order consumer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"default_group"`
	Brokers []string `env:"BROKER,required"`
}

// EventPublisher holds the configuration for the Kafka event publisher.
type EventPublisher struct {
	Topic   string   `env:"TOPIC,required"`
	Brokers []string `env:"BROKER,required"`
}

// EngineConfig holds runtime tunables for the dispatch loop.
type EngineConfig struct {
	ReadBackoff time.Duration `env:"READ_BACKOFF" envDefault:"100ms"`
	DepthLevels int           `env:"DEPTH_LEVELS" envDefault:"100"`
}
