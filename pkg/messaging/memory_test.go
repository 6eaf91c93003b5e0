package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue(10)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, "notifications", []byte("first")))
	require.NoError(t, q.Publish(ctx, "notifications", []byte("second")))
	require.NoError(t, q.Publish(ctx, "other", []byte("elsewhere")))

	msg, err := q.Consume(ctx, "notifications")
	require.NoError(t, err)
	assert.Equal(t, "first", string(msg.Payload))

	msg, err = q.Consume(ctx, "notifications")
	require.NoError(t, err)
	assert.Equal(t, "second", string(msg.Payload))
	assert.Equal(t, "notifications", msg.Topic)
}

func TestMemoryQueueConsumeHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Consume(ctx, "empty")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueueClose(t *testing.T) {
	q := NewMemoryQueue(1)
	done := make(chan error, 1)
	go func() {
		_, err := q.Consume(context.Background(), "topic")
		done <- err
	}()

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("consumer was not released by Close")
	}

	assert.ErrorIs(t, q.Publish(context.Background(), "topic", nil), ErrQueueClosed)
}
