package benchmark

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrEmptyCommand is returned when there is nothing to execute.
var ErrEmptyCommand = errors.New("empty command")

// CommandRunner measures the execution time of external commands.
type CommandRunner struct {
	// Dir is the working directory of the command. Empty means the current one.
	Dir string
	Env []string
}

// NewCommandRunner returns a runner executing in the current directory.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// ParseCommand turns CLI arguments into an argv. A single argument is split
// with shell quoting rules, so both `timeit exec -- ls -la` and
// `timeit exec "ls -la"` work.
func ParseCommand(args []string) ([]string, error) {
	if len(args) == 1 {
		words, err := shellquote.Split(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse command %q: %w", args[0], err)
		}
		args = words
	}
	if len(args) == 0 || args[0] == "" {
		return nil, ErrEmptyCommand
	}
	return args, nil
}

// Run measures argv with b. The value of the timing is the standard output of
// the last invocation. A failing invocation ends the measurement with its error.
func (r *CommandRunner) Run(ctx context.Context, b *Benchmarker, name string, argv []string) (Timing[[]byte], error) {
	if len(argv) == 0 {
		return Timing[[]byte]{}, ErrEmptyCommand
	}
	if name == "" {
		name = shellquote.Join(argv...)
	}
	return MeasureNamed(b, name, func() ([]byte, error) {
		return r.invoke(ctx, argv)
	})
}

func (r *CommandRunner) invoke(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("command %s failed: %w", argv[0], err)
		}
		return nil, fmt.Errorf("command %s failed: %w\n%s", argv[0], err, msg)
	}
	return stdout.Bytes(), nil
}
