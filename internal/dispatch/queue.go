package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

const defaultQueueSize = 64

var ErrClosed = errors.New("dispatch queue closed")

// Queue runs events one at a time on a single goroutine. Everything that mutates a
// draft's engine or sequencer, including timer and media callbacks, goes through it.
type Queue struct {
	events chan func()
	done   chan struct{}
	logger *slog.Logger

	closeOnce sync.Once
	running   sync.WaitGroup
}

func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		events: make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start runs the queue on its own goroutine until ctx ends or Close is called.
func (q *Queue) Start(ctx context.Context) {
	q.running.Add(1)
	go func() {
		defer q.running.Done()
		q.Run(ctx)
	}()
}

// Run drains events until ctx ends or the queue is closed.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			q.Close()
			return
		case <-q.done:
			return
		case fn := <-q.events:
			q.run(fn)
		}
	}
}

func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Dispatch event panicked", "panic", r)
		}
	}()
	fn()
}

// Post enqueues fn without waiting for it to run.
func (q *Queue) Post(fn func()) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.events <- fn:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// Do runs fn on the queue and waits for its result.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result := make(chan error, 1)
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("dispatch event panicked: %v", r)
			}
		}()
		result <- fn()
	}

	select {
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.events <- wrapped:
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	}
}

// Close stops the queue. Pending events are dropped.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

// Wait blocks until a queue started with Start has returned.
func (q *Queue) Wait() {
	q.running.Wait()
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
