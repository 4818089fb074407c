package cover

import (
	"context"
	"log"
	"sync"
	"time"

	"backlogr/internal/events"
)

// LookupResult is the per-card contract: a URL (possibly nil when the
// search found nothing) or a pending flag while the queue works through
// earlier titles.
type LookupResult struct {
	URL     *string `json:"url"`
	Pending bool    `json:"pending"`
}

// Resolver ties the cache and the rate-limited queue together:
// cache-first reads, queue on miss, write-back of both positive and
// negative outcomes. Owns its queue and cache handle explicitly so tests
// can run isolated instances side by side.
type Resolver struct {
	cache *Cache
	queue *Queue
	Hub   *events.Hub // optional; broadcasts cover.resolved

	mu       sync.Mutex
	inflight map[string]bool
}

func NewResolver(cache *Cache, client *SearchClient, delay time.Duration) *Resolver {
	return &Resolver{
		cache:    cache,
		queue:    NewQueue(delay, client.Search),
		inflight: make(map[string]bool),
	}
}

// Resolve blocks until the cover for title is known: a cache hit answers
// immediately and costs zero external calls; a miss waits for the queue.
// If ctx is cancelled mid-wait the external result is still written back
// so the call was not wasted.
func (r *Resolver) Resolve(ctx context.Context, title string) (*string, error) {
	if e, err := r.cache.Get(ctx, title); err != nil {
		return nil, err
	} else if e != nil {
		return e.URL, nil
	}

	ch := r.queue.Enqueue(title)
	select {
	case url := <-ch:
		if err := r.cache.Put(ctx, title, url); err != nil {
			log.Printf("[cover] cache write-back %q: %v", title, err)
		}
		return url, nil
	case <-ctx.Done():
		go func() {
			url := <-ch
			if err := r.cache.Put(context.Background(), title, url); err != nil {
				log.Printf("[cover] cache write-back %q: %v", title, err)
			}
		}()
		return nil, ctx.Err()
	}
}

// Lookup is the non-blocking form used by the HTTP surface: a cache hit
// answers right away, a miss reports pending and resolves in the
// background, announcing completion on the hub. Repeat polls for the
// same title while a resolution is in flight do not enqueue duplicates.
func (r *Resolver) Lookup(ctx context.Context, title string) (LookupResult, error) {
	e, err := r.cache.Get(ctx, title)
	if err != nil {
		return LookupResult{}, err
	}
	if e != nil {
		return LookupResult{URL: e.URL}, nil
	}

	r.kick(title)
	return LookupResult{Pending: true}, nil
}

func (r *Resolver) kick(title string) {
	key := Key(title)

	r.mu.Lock()
	if r.inflight[key] {
		r.mu.Unlock()
		return
	}
	r.inflight[key] = true
	r.mu.Unlock()

	go func() {
		url := <-r.queue.Enqueue(title)

		if err := r.cache.Put(context.Background(), title, url); err != nil {
			log.Printf("[cover] cache write-back %q: %v", title, err)
		}

		r.mu.Lock()
		delete(r.inflight, key)
		r.mu.Unlock()

		if r.Hub != nil {
			r.Hub.BroadcastJSON(events.CoverEvent{
				Type:  events.TypeCoverResolved,
				Title: title,
				URL:   url,
				At:    time.Now().UTC(),
			})
		}
	}()
}

// QueueLen exposes the waiting-item count for readiness/debug endpoints.
func (r *Resolver) QueueLen() int {
	return r.queue.Len()
}
