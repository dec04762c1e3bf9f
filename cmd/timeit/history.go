package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"timeit/internal/benchmark"
	"timeit/internal/utils"

	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		since string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved benchmark runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, limit, since)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Show at most this many recent runs (0 for all)")
	cmd.Flags().StringVar(&since, "since", "", "Only show runs after this time (e.g. 7d, 24h, 2026-01-02)")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, limit int, since string) error {
	var after time.Time
	if since != "" {
		t, err := utils.ParseSince(since, time.Now())
		if err != nil {
			return err
		}
		after = t
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if !after.IsZero() {
		runs = runsAfter(runs, after)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved runs.")
		return nil
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tCOMMIT\tBENCHMARK\tREPEAT\tNUMBER\tBEST\tPER CALL")
	for _, run := range runs {
		commit := run.Commit
		if commit == "" {
			commit = "-"
		}
		for _, r := range run.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%v\t%v\n",
				run.Timestamp.Format("2006-01-02 15:04:05"), commit, r.Name, r.Repeat, r.Number, r.Best, r.PerCall)
		}
	}
	return w.Flush()
}

func runsAfter(runs []benchmark.Run, after time.Time) []benchmark.Run {
	var out []benchmark.Run
	for _, r := range runs {
		if r.Timestamp.After(after) {
			out = append(out, r)
		}
	}
	return out
}
