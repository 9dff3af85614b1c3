package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName     string        `envconfig:"SERVICE_NAME" default:"petstore-core"`
	Env             string        `envconfig:"ENV" default:"dev"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	SeedCatalog     bool          `envconfig:"SEED_CATALOG" default:"true"`
	KafkaBrokers    string        `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic      string        `envconfig:"KAFKA_TOPIC" default:"petstore.events"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:""`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	PaymentGateway  string        `envconfig:"PAYMENT_GATEWAY" default:"instant"`
	PaymentSuccess  float64       `envconfig:"PAYMENT_SUCCESS_RATE" default:"0.9"`
	LowStockLevel   int           `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Brokers splits KAFKA_BROKERS on commas. Empty means the relay is disabled.
func (c *Config) Brokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
