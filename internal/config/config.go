package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every deployment-tunable knob. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"storefront"`
	Env         string `envconfig:"ENV" default:"dev"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"storefront"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`

	TaxRate               float64 `envconfig:"TAX_RATE" default:"0.08"`
	ShippingFlatFee       float64 `envconfig:"SHIPPING_FLAT_FEE" default:"30000"`
	FreeShippingThreshold float64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"500000"`

	OrderNumberPrefix string `envconfig:"ORDER_NUMBER_PREFIX" default:"DH"`

	PaymentWebhookSecret    string        `envconfig:"PAYMENT_WEBHOOK_SECRET"`
	PaymentWebhookTolerance time.Duration `envconfig:"PAYMENT_WEBHOOK_TOLERANCE" default:"5m"`

	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"2s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return Config{}, fmt.Errorf("config: TAX_RATE must be within [0,1), got %v", cfg.TaxRate)
	}
	if cfg.ShippingFlatFee < 0 {
		return Config{}, fmt.Errorf("config: SHIPPING_FLAT_FEE must not be negative")
	}
	return cfg, nil
}
