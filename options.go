package batchloader

import (
	"time"

	"go.uber.org/zap"
)

// DefaultWait is the batch window applied when WithWait is not given.
const DefaultWait = 16 * time.Millisecond

// Option configures a BatchLoader at construction time.
type Option[K comparable, V any] interface {
	apply(*batchLoader[K, V])
}

type optionFunc[K comparable, V any] func(*batchLoader[K, V])

func (f optionFunc[K, V]) apply(l *batchLoader[K, V]) {
	f(l)
}

// WithWait sets how long the loader collects keys before sending a batch.
func WithWait[K comparable, V any](wait time.Duration) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.wait = wait
	})
}

// WithMaxBatch limits the number of keys sent in one batch. When the open
// batch reaches the limit it dispatches immediately and a new batch opens
// for subsequent loads. 0 means no limit.
func WithMaxBatch[K comparable, V any](maxBatch int) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.maxBatch = maxBatch
	})
}

// WithCache replaces the built-in map cache. The loader serializes access to
// the cache through its own lock, so implementations need no locking of
// their own.
func WithCache[K comparable, V any](cache Cache[K, V]) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.cache = cache
	})
}

// WithoutCache disables caching entirely. Loads still deduplicate within a
// batch window, but every window fetches again.
func WithoutCache[K comparable, V any]() Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.cache = nopCache[K, V]{}
	})
}

// WithScheduleFn replaces the wait-timer batch window with a custom deferral
// strategy, for callers that want to tie dispatch to their own scheduling
// point rather than a duration.
func WithScheduleFn[K comparable, V any](fn ScheduleFn) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.scheduleFn = fn
	})
}

// WithKeyValidator rejects keys before they enter a batch. A key failing the
// validator settles synchronously with ErrInvalidKey and is never fetched.
func WithKeyValidator[K comparable, V any](fn func(K) error) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.validateKey = fn
	})
}

// WithCloner sets the copy policy used by Prime. The default detects a
// Clone or DeepCopy method on V and otherwise relies on value-copy semantics.
func WithCloner[K comparable, V any](cloner ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.cloner = cloner
	})
}

// WithLogger enables debug logging of batch dispatches and failures.
// The default logger discards everything.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return optionFunc[K, V](func(l *batchLoader[K, V]) {
		l.logger = logger
	})
}
