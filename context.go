package batchloader

import (
	"context"
	"sync"
)

type contextKey struct{}

// Registry holds named loaders scoped to one logical operation, typically a
// single request or query execution. Scoping loaders this way keeps their
// caches alive exactly as long as the operation, instead of accumulating in
// one process-wide cache that is never cleared. Long-lived shared loaders
// remain possible by constructing them once and skipping the registry.
type Registry struct {
	mu      sync.Mutex
	loaders map[string]any
}

// WithRegistry returns a child context that carries a new Registry.
func WithRegistry(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, &Registry{
		loaders: make(map[string]any),
	})
}

// RegistryFromContext retrieves the Registry from ctx, or nil if none is present.
func RegistryFromContext(ctx context.Context) *Registry {
	r, _ := ctx.Value(contextKey{}).(*Registry)
	return r
}

// LoaderFromContext returns the loader registered under name, constructing it
// with factory on first use. If ctx carries no Registry (WithRegistry was not
// called), factory is called directly and the loader is unscoped.
//
// The same name must always be used with the same key and value types.
func LoaderFromContext[K comparable, V any](ctx context.Context, name string, factory func() BatchLoader[K, V]) BatchLoader[K, V] {
	r := RegistryFromContext(ctx)
	if r == nil {
		return factory()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loaders[name]; ok {
		return l.(BatchLoader[K, V])
	}
	l := factory()
	r.loaders[name] = l
	return l
}
