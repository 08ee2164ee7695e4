package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type App struct {
	Name        string `env:"APP_NAME" envDefault:"BrainSAIT Store API"`
	Version     string `env:"APP_VERSION" envDefault:"2.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	Port        string `env:"PORT" envDefault:"8080"`
	// SecretKey is consumed by the platform gateway; the store only carries it.
	SecretKey string `env:"SECRET_KEY" envDefault:"dev-secret-key-change-in-production"`
	Region    string `env:"REGION" envDefault:"saudi-arabia"`
	Currency  string `env:"CURRENCY" envDefault:"SAR"`
	Language  string `env:"LANGUAGE" envDefault:"ar"`
}

type DB struct {
	URL             string        `env:"DATABASE_URL,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

// Redis is optional: an empty URL disables the product cache.
type Redis struct {
	URL string `env:"REDIS_URL"`
}

// Kafka is optional: empty bootstrap servers disable analytics publishing.
type Kafka struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	AnalyticsTopic   string `env:"KAFKA_ANALYTICS_TOPIC" envDefault:"store.analytics"`
}

type Config struct {
	App   App
	DB    DB
	Redis Redis
	Kafka Kafka
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
