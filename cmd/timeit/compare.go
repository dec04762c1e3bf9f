package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"timeit/internal/benchmark"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	var failThreshold float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the two most recent saved runs",
		Long: `Compares per-call times of benchmarks present in the two most recent
runs of the history store. Slowdowns above --threshold percent are marked.
With --fail-threshold, the command fails when any slowdown exceeds it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, failThreshold)
		},
	}

	cmd.Flags().Float64("threshold", 10.0, "Percentage change that marks a result as slower or faster")
	cmd.Flags().Float64Var(&failThreshold, "fail-threshold", 0, "Fail if any slowdown exceeds this percentage (0 disables)")

	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, failThreshold float64) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	prev, curr, err := benchmark.LatestTwo(store)
	if err != nil {
		return err
	}

	comps := benchmark.Compare(prev, curr)
	matched := make(map[string]bool, len(comps))
	for _, c := range comps {
		matched[c.Name] = true
	}

	out := cmd.OutOrStdout()
	r := lipgloss.NewRenderer(out)
	slower := r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faster := r.NewStyle().Foreground(lipgloss.Color("10"))

	fmt.Fprintf(out, "Comparison with previous run (%s -> %s)\n", describeRun(prev), describeRun(curr))

	threshold := a.cfg.Threshold
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BENCHMARK\tPREV/CALL\tCURR/CALL\tDIFF %\tSTATUS")
	for _, c := range comps {
		status := "PASS"
		switch {
		case c.PerCallDiff > threshold:
			status = slower.Render("SLOWER")
		case c.PerCallDiff < -threshold:
			status = faster.Render("FASTER")
		}
		fmt.Fprintf(w, "%s\t%v\t%v\t%+.2f%%\t%s\n", c.Name, c.Prev.PerCall, c.Curr.PerCall, c.PerCallDiff, status)
	}
	for _, res := range curr.Results {
		if !matched[res.Name] {
			fmt.Fprintf(w, "%s\t-\t%v\t-\tNEW\n", res.Name, res.PerCall)
		}
	}
	w.Flush()

	if failThreshold <= 0 {
		return nil
	}
	regs := benchmark.Regressions(comps, failThreshold)
	if len(regs) == 0 {
		return nil
	}
	msgs := make([]string, len(regs))
	for i, c := range regs {
		msgs[i] = fmt.Sprintf("%s is %.2f%% slower", c.Name, c.PerCallDiff)
	}
	return fmt.Errorf("performance regression detected: %s", strings.Join(msgs, "; "))
}

func describeRun(run benchmark.Run) string {
	ts := run.Timestamp.Format("2006-01-02 15:04:05")
	if run.Commit == "" {
		return ts
	}
	return fmt.Sprintf("%s @ %s", ts, run.Commit)
}
