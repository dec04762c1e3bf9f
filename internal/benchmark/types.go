package benchmark

import "time"

// Result is the persisted form of a named measurement.
type Result struct {
	Name    string          `json:"name"`
	Number  int             `json:"number"`
	Repeat  int             `json:"repeat"`
	Timings []time.Duration `json:"timings_ns"`
	Best    time.Duration   `json:"best_ns"`
	PerCall time.Duration   `json:"per_call_ns"`
}

// Run represents a collection of results from a single execution.
type Run struct {
	Timestamp time.Time `json:"timestamp"`
	Commit    string    `json:"commit,omitempty"` // Git commit hash
	Results   []Result  `json:"results"`
}

// NewResult converts a measurement into a Result.
func NewResult[T any](name string, t Timing[T]) Result {
	return Result{
		Name:    name,
		Number:  t.Number,
		Repeat:  t.Repeat,
		Timings: t.Timings,
		Best:    t.Best(),
		PerCall: t.PerCall(),
	}
}
