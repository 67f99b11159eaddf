// Package checks runs the configured build and test commands before a
// release is committed. Commands run strictly in order; the first non-zero
// exit aborts the run.
package checks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Command is one check invocation, already split into argv form.
type Command struct {
	Name string   // display name, e.g. "go test"
	Args []string // argv, e.g. ["go", "test", "./..."]
}

// ParseCommand splits a configured command line on whitespace. Quoting is
// deliberately not supported; check commands are simple tool invocations.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty check command")
	}
	name := fields[0]
	if len(fields) > 1 {
		name = fields[0] + " " + fields[1]
	}
	return Command{Name: name, Args: fields}, nil
}

// ParseCommands parses a list of configured command lines.
func ParseCommands(lines []string) ([]Command, error) {
	cmds := make([]Command, 0, len(lines))
	for _, line := range lines {
		cmd, err := ParseCommand(line)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Runner executes check commands in a working directory.
type Runner struct {
	Dir     string
	Verbose bool             // stream command output instead of capturing it
	Notify  func(cmd string) // called before each command runs
}

// Run executes each command in order. On failure the captured output is
// folded into the error so the operator sees what broke.
func (r Runner) Run(ctx context.Context, cmds []Command) error {
	for _, c := range cmds {
		if r.Notify != nil {
			r.Notify(c.Name)
		}
		if err := r.runOne(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r Runner) runOne(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = r.Dir

	if r.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("check %q failed: %w", strings.Join(c.Args, " "), err)
		}
		return nil
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	stop := startSpinner(c.Name)
	err := cmd.Run()
	stop()

	if err != nil {
		out := strings.TrimSpace(buf.String())
		if out != "" {
			return fmt.Errorf("check %q failed: %w\n%s", strings.Join(c.Args, " "), err, out)
		}
		return fmt.Errorf("check %q failed: %w", strings.Join(c.Args, " "), err)
	}
	return nil
}

// startSpinner shows a terminal spinner while a check runs. On non-terminal
// stdout it is a no-op.
func startSpinner(name string) func() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Color("cyan") //nolint:errcheck
	s.Suffix = fmt.Sprintf(" Running %s...", name)
	s.Start()
	return s.Stop
}
