package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"timeit/internal/config"
	"timeit/internal/db"
	"timeit/internal/telemetry"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exit = os.Exit

// Factories swapped out by tests.
var (
	newStoreFunc = func(cfg config.Store) (db.Store, error) {
		return db.NewStore(db.StoreConfig{Type: cfg.Type, ConnectionString: cfg.Path})
	}
	gitCommitFunc = gitCommit
)

// app carries state shared by all subcommands of one root command.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "timeit",
		Short: "Measure how long commands take and keep the results",
		Long: `timeit runs a command a number of times per measurement, repeats the
measurement, and reports every timing together with the output of the last
run. Results can be saved to a history store and compared between runs.`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.timeit.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	cmd.PersistentFlags().String("log-file", "", "Also append logs to this file")
	cmd.PersistentFlags().Bool("disabled", false, "Run commands once without measuring")
	cmd.PersistentFlags().String("store-type", "json", "History store: json, sqlite or postgres")
	cmd.PersistentFlags().String("store-path", "", "History file path, or DSN for postgres")

	cmd.AddCommand(newExecCmd(a))
	cmd.AddCommand(newCompareCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(a.v, a.cfgFile); err != nil {
		return err
	}
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg, err := config.Resolve(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	cfg.Apply()

	a.closeLog = telemetry.InitLogger(cfg.Verbose, cfg.LogFile)
	if used := a.v.ConfigFileUsed(); used != "" {
		telemetry.LogDebug("Using config file", "path", used)
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.closeLog != nil {
		return a.closeLog()
	}
	return nil
}

func (a *app) openStore() (db.Store, error) {
	store, err := newStoreFunc(a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history store: %w", a.cfg.Store.Type, err)
	}
	return store, nil
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
