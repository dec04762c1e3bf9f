package benchmark

import (
	"sync"
	"time"
)

// Timed wraps a function so that every call is measured. The timings of the
// most recent call are kept on the wrapper.
type Timed[T any] struct {
	name string
	fn   func() (T, error)
	b    *Benchmarker // nil means the root benchmarker

	mu      sync.Mutex
	timings []time.Duration
	best    time.Duration
}

// Wrap returns fn measured with b.
func Wrap[T any](b *Benchmarker, name string, fn func() (T, error)) *Timed[T] {
	return &Timed[T]{name: name, fn: fn, b: b}
}

// Timeit returns fn measured with the root benchmarker. The root settings are
// read on every call, so BasicConfig after wrapping still applies.
func Timeit[T any](name string, fn func() (T, error)) *Timed[T] {
	return &Timed[T]{name: name, fn: fn}
}

// Name returns the name the wrapper reports measurements under.
func (t *Timed[T]) Name() string { return t.name }

// Call measures the wrapped function and returns the value of its last call.
func (t *Timed[T]) Call() (T, error) {
	b := t.b
	if b == nil {
		cfg := Default()
		b = &cfg
	}

	res, err := MeasureNamed(b, t.name, t.fn)
	if err != nil {
		var zero T
		return zero, err
	}

	t.mu.Lock()
	t.timings = res.Timings
	t.best = res.Best()
	t.mu.Unlock()
	return res.Value, nil
}

// Timings returns the durations recorded by the last successful call.
func (t *Timed[T]) Timings() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.timings))
	copy(out, t.timings)
	return out
}

// Time returns the best duration of the last successful call.
func (t *Timed[T]) Time() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.best
}
