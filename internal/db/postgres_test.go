package db

import (
	"errors"
	"testing"
	"time"

	"timeit/internal/benchmark"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockStore(t *testing.T, fn func(*PostgresStore, sqlmock.Sqlmock)) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	fn(newPostgresStore(db), mock)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPostgresStore_Mocked(t *testing.T) {
	ts := time.Unix(1700000000, 0)

	t.Run("Save Success", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO runs \(created_at_ns, commit_hash\) VALUES \(\$1, \$2\) RETURNING id`).
				WithArgs(ts.UnixNano(), "abc").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
			mock.ExpectExec(`INSERT INTO results .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)`).
				WithArgs(int64(7), "sleep", 2, 3, "[30,20,25]", int64(20), int64(10)).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			err := store.Save(benchmark.Run{
				Timestamp: ts,
				Commit:    "abc",
				Results: []benchmark.Result{
					{Name: "sleep", Number: 2, Repeat: 3, Timings: []time.Duration{30, 20, 25}, Best: 20, PerCall: 10},
				},
			})
			assert.NoError(t, err)
		})
	})

	t.Run("Save Rolls Back On Error", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO runs").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			mock.ExpectExec("INSERT INTO results").
				WillReturnError(errors.New("disk full"))
			mock.ExpectRollback()

			err := store.Save(benchmark.Run{
				Timestamp: ts,
				Results:   []benchmark.Result{{Name: "x"}},
			})
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "disk full")
		})
	})

	t.Run("LoadAll", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT id, created_at_ns, commit_hash FROM runs").
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at_ns", "commit_hash"}).
					AddRow(1, ts.UnixNano(), "abc").
					AddRow(2, ts.Add(time.Minute).UnixNano(), "def"))
			mock.ExpectQuery("SELECT run_id, name, number_calls, repeat_count, timings, best_ns, per_call_ns FROM results").
				WillReturnRows(sqlmock.NewRows([]string{"run_id", "name", "number_calls", "repeat_count", "timings", "best_ns", "per_call_ns"}).
					AddRow(1, "sleep", 1, 2, "[5,4]", 4, 4).
					AddRow(2, "sleep", 1, 1, "[3]", 3, 3))

			runs, err := store.LoadAll()
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, "abc", runs[0].Commit)
			assert.Equal(t, []time.Duration{5, 4}, runs[0].Results[0].Timings)
			assert.Equal(t, time.Duration(3), runs[1].Results[0].Best)
		})
	})

	t.Run("LoadLatest Empty", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT id, created_at_ns, commit_hash FROM runs").
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at_ns", "commit_hash"}))

			latest, err := store.LoadLatest()
			assert.NoError(t, err)
			assert.Nil(t, latest)
		})
	})

	t.Run("LoadAll Query Error", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectQuery("SELECT id, created_at_ns, commit_hash FROM runs").
				WillReturnError(errors.New("connection reset"))

			_, err := store.LoadAll()
			assert.Error(t, err)
		})
	})

	t.Run("Migrate", func(t *testing.T) {
		withMockStore(t, func(store *PostgresStore, mock sqlmock.Sqlmock) {
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("CREATE TABLE IF NOT EXISTS results").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_results_run_id").WillReturnResult(sqlmock.NewResult(0, 0))

			assert.NoError(t, store.migrate(postgresSchema))
		})
	})
}
