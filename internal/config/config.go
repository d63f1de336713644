package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConverterConfig holds everything the converter service needs. It is built
// once in main and handed to constructors; nothing reads the environment
// after startup.
type ConverterConfig struct {
	Port          string   `env:"SERVER_PORT" env-default:"8080"`
	Env           string   `env:"ENVIRONMENT" env-default:"development"`
	WebhookSecret string   `env:"WEBHOOK_SECRET"`
	PayoutBaseURL string   `env:"PAYOUT_API_BASE_URL"`
	PayoutAPIKey  string   `env:"PAYOUT_API_KEY"`
	MaxAmount     float64  `env:"MAX_TRANSACTION_AMOUNT" env-default:"10000"`
	DBSource      string   `env:"DB_SOURCE"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS"`
	RateSource    string   `env:"RATE_SOURCE" env-default:"static"`
}

// CardPlatformConfig holds the card platform service settings.
type CardPlatformConfig struct {
	Port         string `env:"SERVER_PORT" env-default:"8081"`
	Env          string `env:"ENVIRONMENT" env-default:"development"`
	DBSource     string `env:"DB_SOURCE"`
	ConverterURL string `env:"CONVERTER_INTERNAL_URL" env-default:"http://localhost:8080"`
}

func LoadConverter() (*ConverterConfig, error) {
	var cfg ConverterConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read converter config: %w", err)
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET environment variable is required")
	}
	return &cfg, nil
}

func LoadCardPlatform() (*CardPlatformConfig, error) {
	var cfg CardPlatformConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read card platform config: %w", err)
	}
	if cfg.DBSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}
	return &cfg, nil
}
