package config

import (
	"fmt"

	pkgconfig "github.com/Brunohvg/bibpay/pkg/config"
)

const serviceName = "bibpay"

type Config struct {
	Service      ServiceConfig      `mapstructure:"service"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	FilePath    string `mapstructure:"file_path"`
	Development bool   `mapstructure:"development"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":        serviceName,
		"service.environment": "dev",
		"service.version":     "0.1.0",

		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "bibpay",
		"database.user":               "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "30m",
		"database.conn_max_idle_time": "5m",

		"server.http.host": "0.0.0.0",
		"server.http.port": 8080,
		"server.grpc.host": "0.0.0.0",
		"server.grpc.port": 9090,

		"log.level":  "info",
		"log.format": "json",
		"log.output": "stdout",

		"gateway.provider":               ProviderPagarMe,
		"gateway.timeout":                "15s",
		"gateway.link_expires_in":        "72h",
		"gateway.pagarme.base_url":       "https://api.pagar.me/core/v5",
		"gateway.pagarme.secret_key":     "",
		"gateway.pagarme.webhook_secret": "",
		"gateway.stripe.secret_key":      "",
		"gateway.stripe.webhook_secret":  "",
		"gateway.stripe.currency":        "brl",

		"notification.enabled":            false,
		"notification.country_prefix":     "55",
		"notification.queue":              QueueMemory,
		"notification.queue_size":         100,
		"notification.workers":            1,
		"notification.max_retries":        3,
		"notification.base_delay":         "2s",
		"notification.rate_limit":         5.0,
		"notification.evolution.base_url": "",
		"notification.evolution.api_key":  "",
		"notification.evolution.instance": "",
		"notification.evolution.timeout":  "10s",
		"notification.redis.addr":         "localhost:6379",
		"notification.redis.password":     "",
		"notification.redis.db":           0,
	}
}

// LoadConfig reads the service configuration and validates it.
func LoadConfig() (*Config, error) {
	loaded, err := pkgconfig.Load(serviceName, defaults())
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := loaded.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports configuration that would make a component unusable at runtime.
func (c *Config) Validate() error {
	if c.Server.HTTP.Port <= 0 {
		return fmt.Errorf("invalid config: server.http.port must be positive")
	}
	if err := c.Gateway.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Notification.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
