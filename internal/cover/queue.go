package cover

import (
	"context"
	"log"
	"sync"
	"time"
)

// lookupFunc performs one external search. A nil URL means "no match".
type lookupFunc func(ctx context.Context, title string) (*string, error)

// Queue serializes outbound lookups: one worker, strict FIFO, a fixed
// sleep after every lookup regardless of outcome. That caps the external
// request rate (200ms gives roughly 5/s) no matter how many callers enqueue at
// once, e.g. a grid rendering 24 cards.
//
// Same-title callers are NOT deduplicated here; that is the cache's job,
// applied by the caller before enqueueing. Once enqueued an item always
// resolves; there is no cancel primitive, callers discard late results.
type Queue struct {
	delay  time.Duration
	lookup lookupFunc

	mu      sync.Mutex
	items   []queueItem
	running bool
}

type queueItem struct {
	title string
	out   chan *string
}

func NewQueue(delay time.Duration, lookup lookupFunc) *Queue {
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Queue{delay: delay, lookup: lookup}
}

// Enqueue appends a lookup for title and starts the worker if idle. The
// returned channel delivers exactly one value; it is buffered, so the
// worker never blocks on an abandoned caller.
func (q *Queue) Enqueue(title string) <-chan *string {
	item := queueItem{title: title, out: make(chan *string, 1)}

	q.mu.Lock()
	q.items = append(q.items, item)
	start := !q.running
	if start {
		q.running = true
	}
	q.mu.Unlock()

	if start {
		go q.drain()
	}
	return item.out
}

// Resolve is the blocking form of Enqueue. On ctx cancellation the item
// still runs to completion in the queue; only the wait is abandoned.
func (q *Queue) Resolve(ctx context.Context, title string) (*string, error) {
	ch := q.Enqueue(title)
	select {
	case url := <-ch:
		return url, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain processes items in arrival order until the queue empties, then
// the worker exits (Idle). Lookup failures resolve as "no match" and
// never stall the queue.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		url, err := q.lookup(context.Background(), item.title)
		if err != nil {
			log.Printf("[cover-queue] lookup %q: %v", item.title, err)
			url = nil
		}
		item.out <- url

		time.Sleep(q.delay)
	}
}

// Len reports how many items are waiting (not counting one in flight).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
