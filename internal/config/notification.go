package config

import (
	"fmt"
	"time"
)

const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

type NotificationConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	CountryPrefix string        `mapstructure:"country_prefix"`
	Queue         string        `mapstructure:"queue"`
	QueueSize     int           `mapstructure:"queue_size"`
	Workers       int           `mapstructure:"workers"`
	MaxRetries    int           `mapstructure:"max_retries"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	// RateLimit is the number of messages per second sent to the messenger.
	RateLimit float64         `mapstructure:"rate_limit"`
	Evolution EvolutionConfig `mapstructure:"evolution"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type EvolutionConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Instance string        `mapstructure:"instance"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Validate is a no-op when notifications are disabled.
func (n *NotificationConfig) Validate() error {
	if !n.Enabled {
		return nil
	}
	if n.Evolution.BaseURL == "" || n.Evolution.APIKey == "" || n.Evolution.Instance == "" {
		return fmt.Errorf("notification.evolution settings are required when notifications are enabled")
	}
	switch n.Queue {
	case QueueMemory:
	case QueueRedis:
		if n.Redis.Addr == "" {
			return fmt.Errorf("notification.redis.addr is required for the redis queue")
		}
	default:
		return fmt.Errorf("unsupported notification queue %q", n.Queue)
	}
	if n.Workers <= 0 {
		return fmt.Errorf("notification.workers must be positive")
	}
	if n.BaseDelay <= 0 {
		return fmt.Errorf("notification.base_delay must be positive")
	}
	return nil
}
