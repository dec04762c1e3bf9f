package benchmark

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// ErrInvalidCount is returned when Number or Repeat is not positive.
var ErrInvalidCount = errors.New("number and repeat must be positive")

// Observer receives the outcome of every named measurement.
type Observer interface {
	Observed(name string, number int, timings []time.Duration)
	Failed(name string, err error)
}

// Benchmarker holds the settings used for a measurement.
//
// Repeat is the number of timing measurements taken and Number is how many
// times the function is called inside one measurement.
type Benchmarker struct {
	Disabled  bool
	Repeat    int
	Number    int
	DisableGC bool
	Observer  Observer
}

// Option configures a Benchmarker.
type Option func(*Benchmarker)

// WithRepeat sets how many timing measurements to perform.
func WithRepeat(n int) Option {
	return func(b *Benchmarker) { b.Repeat = n }
}

// WithNumber sets how many calls are made per measurement.
func WithNumber(n int) Option {
	return func(b *Benchmarker) { b.Number = n }
}

// WithGCDisabled turns the garbage collector off while measuring.
func WithGCDisabled(disable bool) Option {
	return func(b *Benchmarker) { b.DisableGC = disable }
}

// WithObserver attaches an observer that is notified after each named measurement.
func WithObserver(o Observer) Option {
	return func(b *Benchmarker) { b.Observer = o }
}

// New returns a Benchmarker performing one measurement of one call unless
// overridden by opts.
func New(opts ...Option) *Benchmarker {
	b := &Benchmarker{Repeat: 1, Number: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Enable turns measurement on.
func (b *Benchmarker) Enable() { b.Disabled = false }

// Disable turns measurement off. Measure then only calls the function once.
func (b *Benchmarker) Disable() { b.Disabled = true }

func (b *Benchmarker) validate() error {
	if b.Number <= 0 || b.Repeat <= 0 {
		return fmt.Errorf("%w: number=%d repeat=%d", ErrInvalidCount, b.Number, b.Repeat)
	}
	return nil
}

// Timing is the outcome of a measurement: one duration per repetition and the
// value returned by the last call.
type Timing[T any] struct {
	Timings []time.Duration
	Value   T
	Number  int
	Repeat  int
}

// Best returns the lowest measured duration, or zero when nothing was measured.
func (t Timing[T]) Best() time.Duration {
	if len(t.Timings) == 0 {
		return 0
	}
	best := t.Timings[0]
	for _, d := range t.Timings[1:] {
		if d < best {
			best = d
		}
	}
	return best
}

// PerCall returns Best divided by the number of calls per measurement.
func (t Timing[T]) PerCall() time.Duration {
	if t.Number <= 0 {
		return 0
	}
	return t.Best() / time.Duration(t.Number)
}

// Measure calls fn b.Number times per measurement, b.Repeat times, and
// returns the durations together with the value of the final call.
//
// An error from fn stops the measurement and is returned as is.
func Measure[T any](b *Benchmarker, fn func() (T, error)) (Timing[T], error) {
	if b.Disabled {
		v, err := fn()
		if err != nil {
			return Timing[T]{}, err
		}
		return Timing[T]{Timings: []time.Duration{}, Value: v, Number: b.Number, Repeat: b.Repeat}, nil
	}
	if err := b.validate(); err != nil {
		return Timing[T]{}, err
	}

	if b.DisableGC {
		old := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(old)
	}

	res := Timing[T]{
		Timings: make([]time.Duration, 0, b.Repeat),
		Number:  b.Number,
		Repeat:  b.Repeat,
	}
	for i := 0; i < b.Repeat; i++ {
		var err error
		start := time.Now()
		for j := 0; j < b.Number; j++ {
			if res.Value, err = fn(); err != nil {
				return Timing[T]{}, err
			}
		}
		res.Timings = append(res.Timings, time.Since(start))
	}
	return res, nil
}

// MeasureNamed is Measure plus notification of b.Observer, if any.
func MeasureNamed[T any](b *Benchmarker, name string, fn func() (T, error)) (Timing[T], error) {
	res, err := Measure(b, fn)
	if b.Observer != nil {
		if err != nil {
			b.Observer.Failed(name, err)
		} else if len(res.Timings) > 0 {
			b.Observer.Observed(name, res.Number, res.Timings)
		}
	}
	return res, err
}

// Func adapts a function that cannot fail.
func Func[T any](fn func() T) func() (T, error) {
	return func() (T, error) { return fn(), nil }
}

// Action adapts a function that returns only an error.
func Action(fn func() error) func() (struct{}, error) {
	return func() (struct{}, error) { return struct{}{}, fn() }
}

var (
	rootMu sync.RWMutex
	root   = New()
)

// Default returns a copy of the root benchmarker's settings.
func Default() Benchmarker {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return *root
}

// BasicConfig configures and enables the root benchmarker.
func BasicConfig(opts ...Option) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root.Disabled = false
	for _, opt := range opts {
		opt(root)
	}
}

// Enable turns the root benchmarker on.
func Enable() {
	rootMu.Lock()
	defer rootMu.Unlock()
	root.Enable()
}

// Disable turns the root benchmarker off.
func Disable() {
	rootMu.Lock()
	defer rootMu.Unlock()
	root.Disable()
}
