// Package launcher runs experiment commands as child processes.
//
// Each child runs in its own process group. Cancelling the context passed to
// Run forwards an interrupt to that group and then waits for the child to
// exit on its own; the child is never killed outright.
package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/vk/runexp/internal/ctxlog"
)

// ErrNoCommand is returned for a Spec with neither arguments nor a script.
var ErrNoCommand = errors.New("no command or script to run")

// Spec describes one child process.
type Spec struct {
	// Args is the command line. When empty, Script is fed to the shell's
	// standard input.
	Args   []string
	Script string
	// Env is added after the launcher's base environment.
	Env []string
	Dir string
}

// Result is the outcome of a child that started.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Interrupted is set when the context was cancelled while the child ran.
	Interrupted bool
}

// Success reports a zero exit without interruption.
func (r *Result) Success() bool {
	return !r.Interrupted && r.ExitCode == 0
}

// Launcher starts a child, forwards cancellation to it and waits for it.
type Launcher interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
}

// Exec launches children with os/exec.
type Exec struct {
	baseEnv []string
	shell   []string
}

// Option configures an Exec.
type Option func(*Exec)

// withBaseEnv replaces the inherited environment.
func withBaseEnv(env []string) Option {
	return func(e *Exec) { e.baseEnv = slices.Clone(env) }
}

// withShell sets the command that reads scripts from standard input.
func withShell(args ...string) Option {
	return func(e *Exec) { e.shell = slices.Clone(args) }
}

// New returns an Exec that inherits this process's environment and runs
// scripts with the platform shell.
func New(opts ...Option) *Exec {
	e := &Exec{baseEnv: os.Environ()}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.shell) == 0 {
		e.shell = defaultShell()
	}
	return e
}

// Run starts spec and blocks until the child exits. A non-zero exit is
// reported in the Result, not as an error; errors mean the child could not
// be started.
func (e *Exec) Run(ctx context.Context, spec Spec) (*Result, error) {
	args := spec.Args
	var stdin io.Reader
	if len(args) == 0 {
		if strings.TrimSpace(spec.Script) == "" {
			return nil, ErrNoCommand
		}
		args = e.shell
		stdin = strings.NewReader(spec.Script)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Env = append(slices.Clone(e.baseEnv), spec.Env...)
	cmd.Dir = spec.Dir
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	isolate(cmd)
	cmd.Cancel = func() error {
		ctxlog.FromContext(ctx).Debug("Forwarding interrupt to child.", "pid", cmd.Process.Pid)
		return interrupt(cmd.Process)
	}

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		res.Interrupted = true
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		return nil, fmt.Errorf("starting %s: %w", args[0], err)
	}
	return res, nil
}

// Func adapts a function to the Launcher interface.
type Func func(ctx context.Context, spec Spec) (*Result, error)

// Run calls f.
func (f Func) Run(ctx context.Context, spec Spec) (*Result, error) { return f(ctx, spec) }
