// Package messaging provides the work queues used to hand jobs from request
// paths to background workers.
package messaging

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Publish and Consume after Close.
var ErrQueueClosed = errors.New("queue closed")

// Message is one queued job.
type Message struct {
	Topic   string
	Payload []byte
	Time    time.Time
}

// Queue is a FIFO job queue. Consume blocks until a message is available or ctx is done.
type Queue interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Consume(ctx context.Context, topic string) (*Message, error)
	Close() error
}
