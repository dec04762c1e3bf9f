package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"timeit/internal/benchmark"
	"timeit/internal/telemetry"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
)

type commandRunner interface {
	Run(ctx context.Context, b *benchmark.Benchmarker, name string, argv []string) (benchmark.Timing[[]byte], error)
}

var newRunnerFunc = func() commandRunner { return benchmark.NewCommandRunner() }

func newExecCmd(a *app) *cobra.Command {
	var (
		name       string
		save       bool
		showOutput bool
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Measure the execution time of a command",
		Long: `Runs the command --number times per measurement and takes --repeat
measurements. Prints every measurement, the best one, and the standard output
of the final run. A command given as a single quoted argument is split with
shell quoting rules.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExec(cmd, args, name, save, showOutput)
		},
	}

	cmd.Flags().IntP("number", "n", 1, "Calls per measurement")
	cmd.Flags().IntP("repeat", "r", 1, "Number of measurements")
	cmd.Flags().Bool("disable-gc", false, "Disable the garbage collector while measuring")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&name, "name", "", "Name stored with the result (default is the command line)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result to the history store")
	cmd.Flags().BoolVar(&showOutput, "output", true, "Print the output of the final run")

	return cmd
}

func (a *app) runExec(cmd *cobra.Command, args []string, name string, save, showOutput bool) error {
	argv, err := benchmark.ParseCommand(args)
	if err != nil {
		return err
	}
	if name == "" {
		name = shellquote.Join(argv...)
	}

	b := benchmark.Default()
	var metrics *telemetry.Metrics
	if a.cfg.MetricsFile != "" {
		metrics = telemetry.NewMetrics()
		b.Observer = metrics
	}

	telemetry.LogDebug("Running benchmark", "name", name, "repeat", b.Repeat, "number", b.Number, "disable_gc", b.DisableGC)

	res, runErr := newRunnerFunc().Run(cmd.Context(), &b, name, argv)

	if metrics != nil {
		if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			telemetry.LogError("Failed to write metrics", err, "path", a.cfg.MetricsFile)
		}
	}
	if runErr != nil {
		return fmt.Errorf("benchmark %q failed: %w", name, runErr)
	}

	out := cmd.OutOrStdout()
	if len(res.Timings) == 0 {
		fmt.Fprintf(out, "Benchmarking disabled, ran %s once\n", name)
	} else {
		printTimings(out, name, res)
	}

	if showOutput && len(res.Value) > 0 {
		fmt.Fprintln(out, "\n--- output of final run ---")
		out.Write(res.Value)
	}

	if !save || len(res.Timings) == 0 {
		return nil
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	run := benchmark.Run{
		Timestamp: time.Now(),
		Commit:    gitCommitFunc(),
		Results:   []benchmark.Result{benchmark.NewResult(name, res)},
	}
	if err := store.Save(run); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	telemetry.LogInfo("Saved benchmark run", "name", name, "store", a.cfg.Store.Type)
	fmt.Fprintln(out, "\nResults saved")
	return nil
}

func printTimings(out io.Writer, name string, res benchmark.Timing[[]byte]) {
	fmt.Fprintf(out, "Benchmark: %s (repeat=%d, number=%d)\n", name, res.Repeat, res.Number)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN\tTOTAL\tPER CALL")
	for i, d := range res.Timings {
		fmt.Fprintf(w, "%d\t%v\t%v\n", i+1, d, d/time.Duration(res.Number))
	}
	w.Flush()

	fmt.Fprintf(out, "Best: %v (%v per call)\n", res.Best(), res.PerCall())
}
