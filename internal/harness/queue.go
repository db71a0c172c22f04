package harness

import (
	"context"
	"sync"
)

// Queue is unbounded FIFO safe for concurrent use.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		mu:     sync.Mutex{},
		items:  nil,
		notify: make(chan struct{}, 1),
	}
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) Offer(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.wake()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Poll removes head of queue if there is one.
func (q *Queue[T]) Poll() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	item := q.items[0]
	q.items = q.items[1:]
	if len(q.items) > 0 {
		// let other waiters see what is left
		q.wake()
	}
	return item, true
}

// Take removes head of queue, waiting for it if queue is empty.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	for {
		if item, ok := q.Poll(); ok {
			return item, nil
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.notify:
		}
	}
}

// Snapshot returns copy of queued items without removing them.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]T(nil), q.items...)
}
