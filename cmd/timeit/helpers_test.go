package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"timeit/internal/benchmark"
	"timeit/internal/config"
	"timeit/internal/db"

	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	result benchmark.Timing[[]byte]
	err    error
	got    benchmark.Benchmarker
	name   string
	argv   []string
}

func (m *mockRunner) Run(ctx context.Context, b *benchmark.Benchmarker, name string, argv []string) (benchmark.Timing[[]byte], error) {
	m.got = *b
	m.name = name
	m.argv = argv
	if m.err != nil {
		if b.Observer != nil {
			b.Observer.Failed(name, m.err)
		}
		return benchmark.Timing[[]byte]{}, m.err
	}
	if b.Observer != nil {
		b.Observer.Observed(name, m.result.Number, m.result.Timings)
	}
	return m.result, nil
}

type mockStore struct {
	runs    []benchmark.Run
	saveErr error
	closed  bool
}

func (m *mockStore) Save(run benchmark.Run) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockStore) LoadLatest() (*benchmark.Run, error) {
	if len(m.runs) == 0 {
		return nil, nil
	}
	return &m.runs[len(m.runs)-1], nil
}

func (m *mockStore) LoadAll() ([]benchmark.Run, error) {
	return m.runs, nil
}

func (m *mockStore) Close() error {
	m.closed = true
	return nil
}

// withMocks isolates a test from the working directory, the root benchmarker
// and the real runner and store.
func withMocks(t *testing.T, r *mockRunner, s *mockStore) {
	t.Helper()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))

	oldRunner, oldStore, oldCommit := newRunnerFunc, newStoreFunc, gitCommitFunc
	oldRoot := benchmark.Default()
	oldLogger := slog.Default()

	newRunnerFunc = func() commandRunner { return r }
	newStoreFunc = func(cfg config.Store) (db.Store, error) { return s, nil }
	gitCommitFunc = func() string { return "abc1234" }

	t.Cleanup(func() {
		os.Chdir(old)
		newRunnerFunc, newStoreFunc, gitCommitFunc = oldRunner, oldStore, oldCommit
		benchmark.BasicConfig(
			benchmark.WithRepeat(oldRoot.Repeat),
			benchmark.WithNumber(oldRoot.Number),
			benchmark.WithGCDisabled(oldRoot.DisableGC),
		)
		if oldRoot.Disabled {
			benchmark.Disable()
		}
		slog.SetDefault(oldLogger)
	})
}

func executeCommand(args ...string) (string, error) {
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(bytes.NewBufferString(""))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
