package messaging

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process queue backed by one buffered channel per topic.
type MemoryQueue struct {
	mu     sync.Mutex
	size   int
	topics map[string]chan Message
	closed chan struct{}
	once   sync.Once
}

// NewMemoryQueue creates a queue whose topics buffer up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{
		size:   size,
		topics: make(map[string]chan Message),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) topic(name string) chan Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, ok := q.topics[name]
	if !ok {
		ch = make(chan Message, q.size)
		q.topics[name] = ch
	}
	return ch
}

// Publish blocks while the topic buffer is full.
func (q *MemoryQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	msg := Message{Topic: topic, Payload: payload, Time: time.Now()}
	select {
	case q.topic(topic) <- msg:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context, topic string) (*Message, error) {
	select {
	case msg := <-q.topic(topic):
		return &msg, nil
	case <-q.closed:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close unblocks all waiting consumers. Messages still buffered are dropped.
func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
