package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"
)

// DefaultRetries is the number of retries after a failed fetch.
const DefaultRetries = 2

// Policy controls how long a result is fresh and how a fetch is retried.
type Policy struct {
	StaleTime time.Duration
	Retries   int           // extra attempts after the first failure
	Backoff   time.Duration // wait before the first retry, doubled after each
}

// Cache stores fetched results by Key. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	flights singleflight.Group
	pending map[string]*flight // fetches in progress, by key

	disk *disk
	log  logr.Logger
	now  func() time.Time
}

type entry struct {
	key     Key
	data    json.RawMessage
	fetched time.Time
	invalid bool
}

// flight tracks what happened to its key while a fetch was running.
type flight struct {
	key         Key
	invalidated bool // the result is stored as stale
	dropped     bool // the result is not stored at all
}

// fresh reports whether e can be served under p at now.
func (e *entry) fresh(p Policy, now time.Time) bool {
	return e != nil && !e.invalid && now.Sub(e.fetched) < p.StaleTime
}

// Option configures a Cache.
type Option func(*Cache)

// WithDir persists entries in dir.
func WithDir(dir string) Option {
	return func(c *Cache) { c.disk = &disk{dir: dir} }
}

// WithLogger sets the cache logger.
func WithLogger(l logr.Logger) Option {
	return func(c *Cache) {
		if l.GetSink() != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		pending: make(map[string]*flight),
		log:     logr.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the result cached under key, or calls fn to get a fresh one.
//
// Concurrent fetches of the same key share a single call to fn, which runs
// until it completes even if the caller that started it gives up. Each caller
// waits for it no longer than its own ctx allows.
func Fetch[T any](ctx context.Context, c *Cache, key Key, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if e := c.lookup(key); e.fresh(p, c.now()) {
		var v T
		if err := json.Unmarshal(e.data, &v); err == nil {
			c.log.V(2).Info("cache hit", "key", key.String())
			return v, nil
		}
	}
	ch := c.flights.DoChan(key.String(), func() (any, error) {
		f := c.begin(key)
		v, err := retry(context.WithoutCancel(ctx), p, fn)
		if err != nil {
			c.end(f, nil)
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			c.end(f, nil)
			return nil, fmt.Errorf("cannot cache %s: %w", key, err)
		}
		c.end(f, data)
		return json.RawMessage(data), nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}
	if res.Shared {
		c.log.V(2).Info("shared fetch", "key", key.String())
	}
	var v T
	if err := json.Unmarshal(res.Val.(json.RawMessage), &v); err != nil {
		return zero, fmt.Errorf("cannot decode cached %s: %w", key, err)
	}
	return v, nil
}

// Set stores v under key as a fresh result.
func Set[T any](c *Cache, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cannot cache %s: %w", key, err)
	}
	c.store(key, data)
	return nil
}

// Get returns the result cached under key, even a stale one.
func Get[T any](c *Cache, key Key) (T, bool) {
	var v T
	e := c.lookup(key)
	if e == nil {
		return v, false
	}
	if err := json.Unmarshal(e.data, &v); err != nil {
		return v, false
	}
	return v, true
}

// Invalidate marks every result under prefix as stale. The next Fetch
// refreshes them.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalid = true
			n++
		}
	}
	for _, f := range c.pending {
		if f.key.HasPrefix(prefix) {
			f.invalidated = true
		}
	}
	if c.disk != nil {
		if err := c.disk.remove(prefix, c.now()); err != nil {
			c.log.Error(err, "cannot invalidate disk cache", "prefix", prefix.String())
		}
	}
	c.log.V(1).Info("invalidated", "prefix", prefix.String(), "entries", n)
}

// Remove forgets every result under prefix.
func (c *Cache) Remove(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
		}
	}
	for _, f := range c.pending {
		if f.key.HasPrefix(prefix) {
			f.dropped = true
		}
	}
	if c.disk != nil {
		if err := c.disk.remove(prefix, c.now()); err != nil {
			c.log.Error(err, "cannot remove from disk cache", "prefix", prefix.String())
		}
	}
}

// Clear forgets everything, on disk included.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	for _, f := range c.pending {
		f.dropped = true
	}
	if c.disk != nil {
		return c.disk.clear()
	}
	return nil
}

// Len returns the number of results held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// lookup returns a copy of the entry under key, loading it from disk if needed.
func (c *Cache) lookup(key Key) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok && c.disk != nil {
		var err error
		if e, err = c.disk.get(key, c.now()); err == nil {
			c.entries[key.String()] = e
			ok = true
		}
	}
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

func (c *Cache) store(key Key, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(&entry{key: slices.Clone(key), data: data, fetched: c.now()})
}

// begin registers a fetch of key.
func (c *Cache) begin(key Key) *flight {
	f := &flight{key: slices.Clone(key)}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[key.String()] = f
	return f
}

// end unregisters f and stores its result, unless data is nil. A result
// invalidated while it was fetched is kept but stale.
func (c *Cache) end(f *flight, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, f.key.String())
	if data == nil || f.dropped {
		return
	}
	if f.invalidated {
		c.log.V(1).Info("invalidated while fetching", "key", f.key.String())
	}
	c.put(&entry{key: f.key, data: data, fetched: c.now(), invalid: f.invalidated})
}

// put saves e, c.mu must be held.
func (c *Cache) put(e *entry) {
	c.entries[e.key.String()] = e
	// stale results are not persisted, the next process fetches them again
	if c.disk != nil && !e.invalid {
		if err := c.disk.put(e); err != nil {
			c.log.Error(err, "cache write err (ignored)", "key", e.key.String())
		}
	}
}

// retry calls fn until it succeeds, p.Retries is exhausted, or the error is
// not retryable.
func retry[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	wait := p.Backoff
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil || attempt >= p.Retries || !retryable(ctx, err) {
			return v, err
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return v, err
			case <-time.After(wait):
			}
			wait *= 2
		}
	}
}

// retryable honors errors that tell whether they are worth a retry, like the
// API client ones which refuse to retry 4xx failures.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
