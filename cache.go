package batchloader

// Cache stores resolved values for the lifetime of a loader instance. Error
// results never enter the cache, so a key that failed can be retried in a
// later window. The loader serializes access through its own lock, so
// implementations do not need to be safe for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (*V, bool)
	Set(key K, value *V)
	Delete(key K)
	Clear()
}

// mapCache is the built-in Cache, a lazily allocated map.
type mapCache[K comparable, V any] struct {
	entries map[K]*V
}

func (c *mapCache[K, V]) Get(key K) (*V, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *mapCache[K, V]) Set(key K, value *V) {
	if c.entries == nil {
		c.entries = map[K]*V{}
	}
	c.entries[key] = value
}

func (c *mapCache[K, V]) Delete(key K) {
	delete(c.entries, key)
}

func (c *mapCache[K, V]) Clear() {
	c.entries = nil
}

// nopCache is the Cache used by WithoutCache. Nothing is ever stored.
type nopCache[K comparable, V any] struct{}

func (nopCache[K, V]) Get(K) (*V, bool) { return nil, false }
func (nopCache[K, V]) Set(K, *V)        {}
func (nopCache[K, V]) Delete(K)         {}
func (nopCache[K, V]) Clear()           {}
