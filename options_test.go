package batchloader

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFlushDispatchesOpenBatch(t *testing.T) {
	var batches int32
	fetchFn := func(keys []int) ([]*string, []error) {
		atomic.AddInt32(&batches, 1)
		results := make([]*string, len(keys))
		for i, k := range keys {
			v := string(rune('A' + k))
			results[i] = &v
		}
		return results, make([]error, len(keys))
	}

	// a window long enough that only Flush can dispatch
	loader := New(fetchFn, WithWait[int, string](time.Hour))

	thunk1 := loader.LoadThunk(0)
	thunk2 := loader.LoadThunk(1)
	loader.Flush()

	val1, err := thunk1()
	require.NoError(t, err)
	assert.Equal(t, "A", *val1)

	val2, err := thunk2()
	require.NoError(t, err)
	assert.Equal(t, "B", *val2)

	assert.EqualValues(t, 1, atomic.LoadInt32(&batches))

	// flushing again with no open batch is a no-op
	loader.Flush()
	assert.EqualValues(t, 1, atomic.LoadInt32(&batches))
}

func TestWithoutCacheRefetches(t *testing.T) {
	var fetches int32
	fetchFn := func(keys []int) ([]*string, []error) {
		atomic.AddInt32(&fetches, 1)
		results := make([]*string, len(keys))
		for i := range keys {
			v := "ok"
			results[i] = &v
		}
		return results, make([]error, len(keys))
	}

	loader := New(fetchFn,
		WithWait[int, string](1*time.Millisecond),
		WithoutCache[int, string](),
	)

	_, err := loader.Load(1)
	require.NoError(t, err)
	_, err = loader.Load(1)
	require.NoError(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&fetches))
}

func TestKeyValidatorRejectsSynchronously(t *testing.T) {
	fetchFn := func(keys []string) ([]*string, []error) {
		t.Error("fetch must not be called for invalid keys")
		return make([]*string, len(keys)), make([]error, len(keys))
	}

	loader := New(fetchFn,
		WithWait[string, string](1*time.Millisecond),
		WithKeyValidator[string, string](func(key string) error {
			if key == "" {
				return errors.New("empty key")
			}
			return nil
		}),
	)

	_, err := loader.Load("")
	require.ErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "empty key")
}

func TestScheduleFnControlsDispatch(t *testing.T) {
	fetchFn := func(keys []int) ([]*string, []error) {
		results := make([]*string, len(keys))
		for i, k := range keys {
			v := string(rune('A' + k))
			results[i] = &v
		}
		return results, make([]error, len(keys))
	}

	dispatches := make(chan func(), 1)
	loader := New(fetchFn,
		WithScheduleFn[int, string](func(_ time.Duration, dispatch func()) {
			dispatches <- dispatch
		}),
	)

	thunk := loader.LoadThunk(1)

	// nothing happens until the custom strategy fires the dispatch
	dispatch := <-dispatches
	dispatch()

	val, err := thunk()
	require.NoError(t, err)
	assert.Equal(t, "B", *val)
}

func TestWithLoggerLogsDispatches(t *testing.T) {
	fetchFn := func(keys []int) ([]*string, []error) {
		results := make([]*string, len(keys))
		for i := range keys {
			v := "ok"
			results[i] = &v
		}
		return results, make([]error, len(keys))
	}

	core, logs := observer.New(zap.DebugLevel)
	loader := New(fetchFn,
		WithWait[int, string](1*time.Millisecond),
		WithLogger[int, string](zap.New(core)),
	)

	val, err := loader.Load(1)
	require.NoError(t, err)
	assert.Equal(t, "ok", *val)

	dispatched := logs.FilterMessage("batch dispatched").All()
	require.Len(t, dispatched, 1)
	assert.EqualValues(t, 1, dispatched[0].ContextMap()["keys"])
}

func TestWithClonerAppliesOnPrime(t *testing.T) {
	fetchFn := func(keys []int) ([]*[]string, []error) {
		t.Error("fetch should not be called when primed")
		return make([]*[]string, len(keys)), make([]error, len(keys))
	}

	loader := New(fetchFn,
		WithWait[int, []string](1*time.Millisecond),
		WithCloner[int, []string](ReflectValueCloner[[]string]()),
	)

	tags := []string{"a", "b"}
	loader.Prime(1, &tags)
	tags[0] = "mutated"

	cached, err := loader.Load(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, *cached)
}
