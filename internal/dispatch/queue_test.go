package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_RunsEventsInOrder(t *testing.T) {
	q := NewQueue(0, nil)
	q.Start(context.Background())
	defer q.Close()

	var got []int
	for i := 0; i < 50; i++ {
		i := i
		require.NoError(t, q.Post(func() { got = append(got, i) }))
	}

	// Do runs after everything posted before it.
	require.NoError(t, q.Do(context.Background(), func() error { return nil }))
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestQueue_SerializesConcurrentPosters(t *testing.T) {
	q := NewQueue(8, nil)
	q.Start(context.Background())
	defer q.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = q.Do(context.Background(), func() error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	var final int
	require.NoError(t, q.Do(context.Background(), func() error {
		final = counter
		return nil
	}))
	assert.Equal(t, 1000, final)
}

func TestQueue_DoReturnsErrorAndRecoversPanic(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background())
	defer q.Close()

	boom := errors.New("boom")
	assert.ErrorIs(t, q.Do(context.Background(), func() error { return boom }), boom)

	err := q.Do(context.Background(), func() error { panic("bad event") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad event")

	// The queue keeps running after a panic.
	assert.NoError(t, q.Do(context.Background(), func() error { return nil }))
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background())

	q.Close()
	q.Close()
	q.Wait()

	assert.True(t, q.Closed())
	assert.ErrorIs(t, q.Post(func() {}), ErrClosed)
	assert.ErrorIs(t, q.Do(context.Background(), func() error { return nil }), ErrClosed)
}

func TestQueue_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(1, nil)
	q.Start(ctx)

	cancel()
	q.Wait()
	assert.True(t, q.Closed())
}

func TestQueue_DoHonorsContext(t *testing.T) {
	q := NewQueue(1, nil)
	defer q.Close()

	// Not started: the first event fills the buffer, the second cannot be enqueued.
	require.NoError(t, q.Post(func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_DoSkipsWhenContextAlreadyDone(t *testing.T) {
	q := NewQueue(4, nil)
	q.Start(context.Background())
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := q.Do(ctx, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, q.Do(context.Background(), func() error { return nil }))
	assert.False(t, ran)
}
