package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Queue on top of Redis lists (LPUSH / BRPOP).
type RedisQueue struct {
	client      redis.UniversalClient
	prefix      string
	pollTimeout time.Duration
}

// RedisConfig configures NewRedisQueue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue connects to Redis and verifies the connection.
func NewRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisQueueFromClient(client, cfg.Prefix), nil
}

// NewRedisQueueFromClient wraps an existing client.
func NewRedisQueueFromClient(client redis.UniversalClient, prefix string) *RedisQueue {
	if prefix == "" {
		prefix = "bibpay"
	}
	return &RedisQueue{
		client:      client,
		prefix:      prefix,
		pollTimeout: 5 * time.Second,
	}
}

func (q *RedisQueue) key(topic string) string {
	return q.prefix + ":queue:" + topic
}

type redisEnvelope struct {
	Payload []byte    `json:"payload"`
	Time    time.Time `json:"time"`
}

func (q *RedisQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	data, err := json.Marshal(redisEnvelope{Payload: payload, Time: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := q.client.LPush(ctx, q.key(topic), data).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrQueueClosed
		}
		return fmt.Errorf("failed to push message: %w", err)
	}
	return nil
}

// Consume polls with BRPOP so ctx cancellation is observed at least every pollTimeout.
func (q *RedisQueue) Consume(ctx context.Context, topic string) (*Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key(topic)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return nil, ErrQueueClosed
			}
			return nil, fmt.Errorf("failed to pop message: %w", err)
		}

		// BRPOP returns [key, value].
		var env redisEnvelope
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		return &Message{Topic: topic, Payload: env.Payload, Time: env.Time}, nil
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
