// Package batchloader coalesces the single-key lookups issued during one
// logical operation into batched calls against a caller-supplied fetch
// function. Repeated keys are deduplicated within a batch window, results
// are cached for the lifetime of the loader instance, and every caller
// waiting on a key settles with the same value or error.
package batchloader

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Fetch loads the values for one batch of keys. The returned data must be
// positionally aligned with keys and of the same length; a nil slot with a
// nil error marks the key as not found. The error slice may be empty or
// all-nil (success), contain exactly one non-nil error (a batch-level
// failure applied to every key), or contain one error per key.
type Fetch[K comparable, V any] func(keys []K) ([]*V, []error)

// ScheduleFn decides when an open batch dispatches. It is invoked once per
// opened batch, in its own goroutine, and must eventually call dispatch.
// The default sleeps out the configured wait and then dispatches.
type ScheduleFn func(wait time.Duration, dispatch func())

// BatchLoader batches and caches requests
type BatchLoader[K comparable, V any] interface {
	// Load a value by key, batching and caching will be applied automatically
	Load(key K) (*V, error)

	// LoadThunk returns a function that when called will block waiting for a value.
	// This method should be used if you want one goroutine to make requests to many
	// different data loaders without blocking until the thunk is called.
	LoadThunk(key K) func() (*V, error)

	// LoadAll fetches many keys at once. It will be broken into appropriate sized
	// sub batches depending on how the loader is configured. The returned slices
	// are positionally aligned with keys.
	LoadAll(keys []K) ([]*V, []error)

	// LoadAllThunk returns a function that when called will block waiting for the values.
	// This method should be used if you want one goroutine to make requests to many
	// different data loaders without blocking until the thunk is called.
	LoadAllThunk(keys []K) func() ([]*V, []error)

	// Prime the cache with the provided key and value. If the key already exists, no change is made
	// and false is returned.
	// (To forcefully prime the cache, clear the key first with loader.Clear(key) then Prime(key, value).)
	Prime(key K, value *V) bool

	// Clear the value at key from the cache, if it exists
	Clear(key K)

	// ClearAll evicts every cached value. In-flight batches are unaffected.
	ClearAll()

	// Flush dispatches the open batch immediately instead of waiting out the
	// batch window. Call it at the end of an operation when no more sibling
	// loads can arrive.
	Flush()
}

// New creates a loader around fetch. Without options the loader uses a
// DefaultWait batch window, an unbounded batch size and the built-in
// in-memory cache.
func New[K comparable, V any](fetch Fetch[K, V], opts ...Option[K, V]) BatchLoader[K, V] {
	l := &batchLoader[K, V]{
		fetch:      fetch,
		wait:       DefaultWait,
		scheduleFn: waitScheduler,
		cache:      &mapCache[K, V]{},
		cloner:     DefaultValueCloner[V](),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(l)
	}
	return l
}

var _ BatchLoader[int, struct{}] = (*batchLoader[int, struct{}])(nil)

type batchLoader[K comparable, V any] struct {
	// this method provides the data for the loader
	fetch Fetch[K, V]

	// how long to wait before sending a batch
	wait time.Duration

	// this will limit the maximum number of keys to send in one batch, 0 = no limit
	maxBatch int

	// decides when an open batch dispatches
	scheduleFn ScheduleFn

	// optional key-validity contract, nil = every key is valid
	validateKey func(K) error

	// copy policy applied when priming the cache
	cloner ValueCloner[V]

	logger *zap.Logger

	// resolved values, never errors
	cache Cache[K, V]

	// the current batch. keys will continue to be collected until the window
	// closes, then everything will be sent to the fetch method and out to the
	// waiting thunks
	batch *loaderBatch[K, V]

	// mutex to prevent races
	mu sync.Mutex
}

// Load a value by key, batching and caching will be applied automatically
func (l *batchLoader[K, V]) Load(key K) (*V, error) {
	return l.LoadThunk(key)()
}

// LoadThunk returns a function that when called will block waiting for a value.
// This method should be used if you want one goroutine to make requests to many
// different data loaders without blocking until the thunk is called.
func (l *batchLoader[K, V]) LoadThunk(key K) func() (*V, error) {
	if l.validateKey != nil {
		if verr := l.validateKey(key); verr != nil {
			err := errors.Wrapf(ErrInvalidKey, "key %v: %v", key, verr)
			return func() (*V, error) {
				return nil, err
			}
		}
	}

	l.mu.Lock()
	if it, ok := l.cache.Get(key); ok {
		l.mu.Unlock()
		return func() (*V, error) {
			return it, nil
		}
	}
	if l.batch == nil {
		l.batch = &loaderBatch[K, V]{done: make(chan struct{})}
	}
	batch := l.batch
	pos := batch.keyIndex(l, key)
	l.mu.Unlock()

	return func() (*V, error) {
		<-batch.done

		if err := batch.errs[pos]; err != nil {
			return nil, err
		}
		data := batch.data[pos]

		l.mu.Lock()
		l.cache.Set(key, data)
		l.mu.Unlock()

		return data, nil
	}
}

// LoadAll fetches many keys at once. It will be broken into appropriate sized
// sub batches depending on how the loader is configured
func (l *batchLoader[K, V]) LoadAll(keys []K) ([]*V, []error) {
	thunks := make([]func() (*V, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.LoadThunk(key)
	}

	values := make([]*V, len(keys))
	errs := make([]error, len(keys))
	for i, thunk := range thunks {
		values[i], errs[i] = thunk()
	}
	return values, errs
}

// LoadAllThunk returns a function that when called will block waiting for the values.
// This method should be used if you want one goroutine to make requests to many
// different data loaders without blocking until the thunk is called.
func (l *batchLoader[K, V]) LoadAllThunk(keys []K) func() ([]*V, []error) {
	thunks := make([]func() (*V, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.LoadThunk(key)
	}
	return func() ([]*V, []error) {
		values := make([]*V, len(keys))
		errs := make([]error, len(keys))
		for i, thunk := range thunks {
			values[i], errs[i] = thunk()
		}
		return values, errs
	}
}

// Prime the cache with the provided key and value. If the key already exists, no change is made
// and false is returned.
// (To forcefully prime the cache, clear the key first with loader.Clear(key) then Prime(key, value).)
func (l *batchLoader[K, V]) Prime(key K, value *V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, found := l.cache.Get(key); found {
		return false
	}
	// copy before caching, it's easy to pass a pointer in from a loop var
	// and end up with the whole cache pointing to the same value.
	cpy := l.cloner.CloneValue(*value)
	l.cache.Set(key, &cpy)
	return true
}

// Clear the value at key from the cache, if it exists
func (l *batchLoader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Delete(key)
}

// ClearAll evicts every cached value. In-flight batches are unaffected.
func (l *batchLoader[K, V]) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache.Clear()
}

// Flush dispatches the open batch immediately. It returns after the fetch
// completes; thunks held by callers are ready once it does. Flushing with no
// open batch is a no-op.
func (l *batchLoader[K, V]) Flush() {
	l.mu.Lock()
	b := l.batch
	if b == nil || b.closing {
		l.mu.Unlock()
		return
	}
	b.closing = true
	l.batch = nil
	l.mu.Unlock()
	b.dispatch(l)
}

// waitScheduler is the default ScheduleFn: sleep out the window, then dispatch.
func waitScheduler(wait time.Duration, dispatch func()) {
	time.Sleep(wait)
	dispatch()
}
