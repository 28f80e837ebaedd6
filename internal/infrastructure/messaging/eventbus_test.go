package messaging

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awslearn-hub/tutor-core/internal/domain/learner"
	"github.com/awslearn-hub/tutor-core/internal/domain/shared"
)

func TestEventBus_SyncDelivery(t *testing.T) {
	bus := NewEventBus(Config{})
	var got []shared.Event

	require.NoError(t, bus.Subscribe(shared.EventLabCompleted, func(_ context.Context, e shared.Event) error {
		got = append(got, e)
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(_ context.Context, e shared.Event) error {
		got = append(got, e)
		return nil
	}))

	err := bus.Publish(context.Background(), learner.NewLabCompletedEvent("alice", "lab-1"))

	assert.NoError(t, err)
	// Typed and global handlers both fired, inline.
	assert.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].AggregateID())
}

func TestEventBus_RejectsAfterClose(t *testing.T) {
	bus := NewEventBus(Config{})
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), learner.NewLabCompletedEvent("alice", "lab-1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventLabCompleted, func(context.Context, shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestEventBus_CloseWaitsForAsyncHandlers(t *testing.T) {
	bus := NewEventBus(Config{Async: true})
	var completed atomic.Int32

	require.NoError(t, bus.Subscribe(shared.EventLabCompleted, func(context.Context, shared.Event) error {
		time.Sleep(5 * time.Millisecond)
		completed.Add(1)
		return nil
	}))

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, bus.Publish(context.Background(), learner.NewLabCompletedEvent("alice", "lab-1")))
	}
	require.NoError(t, bus.Close())

	// Close returned only after every dispatched handler ran.
	assert.EqualValues(t, n, completed.Load())
}

func TestEventBus_ConcurrentPublishAndClose(t *testing.T) {
	bus := NewEventBus(Config{Async: true})
	var completed atomic.Int32

	require.NoError(t, bus.Subscribe(shared.EventLabCompleted, func(context.Context, shared.Event) error {
		completed.Add(1)
		return nil
	}))

	// Publishers race Close. Every publish the bus accepted must have its
	// handler finish before Close returns.
	var accepted atomic.Int32
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if err := bus.Publish(context.Background(), learner.NewLabCompletedEvent("alice", "lab-1")); err != nil {
					assert.ErrorIs(t, err, ErrEventBusClosed)
					return
				}
				accepted.Add(1)
			}
		}()
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, bus.Close())
	wg.Wait()

	assert.EqualValues(t, accepted.Load(), completed.Load())
}
