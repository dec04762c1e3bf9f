package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timeit/internal/benchmark"
)

// sqlStore holds the queries shared by the SQLite and Postgres stores. Queries
// are written with '?' placeholders and rebound per dialect.
type sqlStore struct {
	db     *sql.DB
	rebind func(string) string
}

func questionMarks(q string) string { return q }

func dollarPlaceholders(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) migrate(queries []string) error {
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Save stores run and all its results in one transaction.
func (s *sqlStore) Save(run benchmark.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRow(
		s.rebind(`INSERT INTO runs (created_at_ns, commit_hash) VALUES (?, ?) RETURNING id`),
		run.Timestamp.UnixNano(), run.Commit,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	query := s.rebind(`INSERT INTO results (run_id, name, number_calls, repeat_count, timings, best_ns, per_call_ns) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, r := range run.Results {
		timings, err := json.Marshal(r.Timings)
		if err != nil {
			return fmt.Errorf("failed to marshal timings: %w", err)
		}
		if _, err := tx.Exec(query, runID, r.Name, r.Number, r.Repeat, string(timings), int64(r.Best), int64(r.PerCall)); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

// LoadAll returns every stored run, oldest first.
func (s *sqlStore) LoadAll() ([]benchmark.Run, error) {
	rows, err := s.db.Query(`SELECT id, created_at_ns, commit_hash FROM runs ORDER BY created_at_ns, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []benchmark.Run{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id     int64
			nanos  int64
			commit string
		)
		if err := rows.Scan(&id, &nanos, &commit); err != nil {
			return nil, err
		}
		index[id] = len(runs)
		runs = append(runs, benchmark.Run{
			Timestamp: time.Unix(0, nanos),
			Commit:    commit,
			Results:   []benchmark.Result{},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return runs, nil
	}

	resRows, err := s.db.Query(`SELECT run_id, name, number_calls, repeat_count, timings, best_ns, per_call_ns FROM results ORDER BY run_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer resRows.Close()

	for resRows.Next() {
		var (
			r       benchmark.Result
			runID   int64
			timings string
			best    int64
			perCall int64
		)
		if err := resRows.Scan(&runID, &r.Name, &r.Number, &r.Repeat, &timings, &best, &perCall); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(timings), &r.Timings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timings of %s: %w", r.Name, err)
		}
		r.Best = time.Duration(best)
		r.PerCall = time.Duration(perCall)

		if i, ok := index[runID]; ok {
			runs[i].Results = append(runs[i].Results, r)
		}
	}
	return runs, resRows.Err()
}

// LoadLatest returns the most recent run, or nil when none is stored.
func (s *sqlStore) LoadLatest() (*benchmark.Run, error) {
	runs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[len(runs)-1], nil
}
