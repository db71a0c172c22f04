package harness

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shoenig/test"
	"github.com/shoenig/test/must"
)

func TestQueuePoll(t *testing.T) {
	q := NewQueue[int]()

	_, ok := q.Poll()
	test.False(t, ok)

	q.Offer(1)
	q.Offer(2)
	test.EqOp(t, 2, q.Len())

	item, ok := q.Poll()
	test.True(t, ok)
	test.EqOp(t, 1, item)
	test.Eq(t, []int{2}, q.Snapshot())
}

func TestQueueTakeWaitsForOffer(t *testing.T) {
	q := NewQueue[string]()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Offer("sleeping")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item, err := q.Take(ctx)
	must.NoError(t, err)
	test.EqOp(t, "sleeping", item)
	test.EqOp(t, 0, q.Len())
}

func TestQueueTakeCancelled(t *testing.T) {
	q := NewQueue[string]()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Take(ctx)
	test.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueueConcurrentConsumers(t *testing.T) {
	const n = 100

	q := NewQueue[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	seen := map[int]struct{}{}
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, err := q.Take(ctx)
				if err != nil {
					return
				}

				mu.Lock()
				seen[item] = struct{}{}
				done := len(seen) == n
				mu.Unlock()
				if done {
					cancel()
				}
			}
		}()
	}

	for i := range n {
		q.Offer(i)
	}
	wg.Wait()

	test.MapLen(t, n, seen)
}
