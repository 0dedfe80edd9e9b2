package batchloader

import (
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// loaderBatch collects the keys requested during one batch window. Every key
// appears at most once; thunks hold a position into keys and park on done
// until the batch dispatches.
type loaderBatch[K comparable, V any] struct {
	keys    []K
	data    []*V
	errs    []error
	closing bool
	done    chan struct{}
}

// keyIndex will return the location of the key in the batch, if it's not found,
// it will add the key to the batch
func (b *loaderBatch[K, V]) keyIndex(l *batchLoader[K, V], key K) int {
	for i, existingKey := range b.keys {
		if key == existingKey {
			return i
		}
	}

	pos := len(b.keys)
	b.keys = append(b.keys, key)
	if pos == 0 {
		go b.startScheduler(l)
	}

	if l.maxBatch != 0 && pos >= l.maxBatch-1 {
		if !b.closing {
			b.closing = true
			l.batch = nil
			go b.dispatch(l)
		}
	}

	return pos
}

func (b *loaderBatch[K, V]) startScheduler(l *batchLoader[K, V]) {
	l.scheduleFn(l.wait, func() {
		l.mu.Lock()
		// we must have hit a batch limit or a Flush and are already
		// finalizing this batch
		if b.closing {
			l.mu.Unlock()
			return
		}
		b.closing = true
		l.batch = nil
		l.mu.Unlock()

		b.dispatch(l)
	})
}

// dispatch invokes the fetch exactly once and settles every position in the
// batch. It must only be called after the batch has been detached from the
// loader, and at most once.
func (b *loaderBatch[K, V]) dispatch(l *batchLoader[K, V]) {
	defer close(b.done)

	if len(b.keys) == 0 {
		return
	}

	var catcher panics.Catcher
	catcher.Try(func() {
		b.data, b.errs = l.fetch(b.keys)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		l.logger.Error("batch fetch panicked",
			zap.Int("keys", len(b.keys)),
			zap.Error(recovered.AsError()))
		b.fail(&BatchError{Err: recovered.AsError()})
		return
	}

	// a single non-nil error is a batch-level failure; fetches conventionally
	// return it with nil data, so this must win over the length check
	if len(b.errs) == 1 && b.errs[0] != nil {
		l.logger.Debug("batch fetch failed",
			zap.Int("keys", len(b.keys)),
			zap.Error(b.errs[0]))
		b.fail(&BatchError{Err: b.errs[0]})
		return
	}

	if len(b.data) != len(b.keys) || (len(b.errs) > 1 && len(b.errs) != len(b.keys)) {
		l.logger.Error("batch fetch returned malformed result",
			zap.Int("keys", len(b.keys)),
			zap.Int("values", len(b.data)),
			zap.Int("errors", len(b.errs)))
		b.fail(&BatchError{Err: &MalformedResultError{
			Keys: len(b.keys),
			Data: len(b.data),
			Errs: len(b.errs),
		}})
		return
	}

	// normalize to one error slot per key
	if len(b.errs) != len(b.keys) {
		b.errs = make([]error, len(b.keys))
	}
	for i, key := range b.keys {
		if b.errs[i] == nil && b.data[i] == nil {
			b.errs[i] = errors.Wrapf(ErrKeyNotFound, "key %v", key)
		}
	}

	l.logger.Debug("batch dispatched", zap.Int("keys", len(b.keys)))
}

// fail settles every position in the batch with the same batch-level error.
func (b *loaderBatch[K, V]) fail(err error) {
	b.data = make([]*V, len(b.keys))
	b.errs = make([]error, len(b.keys))
	for i := range b.errs {
		b.errs[i] = err
	}
}
