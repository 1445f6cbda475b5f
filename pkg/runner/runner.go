// Package runner executes validated cloud CLI commands as direct child
// processes. No shell ever sees the command line: argv goes straight to
// exec, which closes the injection vector the policy layer screens for.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Result captures one process execution. It is owned by the calling request
// and never shared across calls.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// Runner spawns child processes with a hard wall-clock timeout and bounded
// output capture. Safe for concurrent use: all fields are set at
// construction and read-only afterwards.
type Runner struct {
	timeout     time.Duration
	maxOutputKB int
	extraEnv    []string
	logger      *slog.Logger
}

// Option overrides a Runner default.
type Option func(*Runner)

// WithEnv appends environment variables (KEY=value) to the inherited
// environment, e.g. a default region or project for the CLI.
func WithEnv(env ...string) Option {
	return func(r *Runner) { r.extraEnv = append(r.extraEnv, env...) }
}

// WithLogger sets the execution logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// New creates a Runner. timeout bounds every Run call; maxOutputKB caps each
// captured stream.
func New(timeout time.Duration, maxOutputKB int, opts ...Option) *Runner {
	r := &Runner{
		timeout:     timeout,
		maxOutputKB: maxOutputKB,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsInstalled checks for the binary on PATH.
func (r *Runner) IsInstalled(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Run executes argv and returns a Result even on timeout or non-zero exit.
// The error return is reserved for spawn failures (binary missing,
// permission denied); a command that ran and failed is data, not an error.
func (r *Runner) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty argv")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), r.extraEnv...)

	// No interactive stdin: a CLI waiting on a credential prompt reads EOF
	// immediately instead of hanging until the timeout.
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// If the child ignores the kill long enough to wedge its pipes, give up
	// on them rather than blocking Wait forever.
	cmd.WaitDelay = 5 * time.Second

	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	res := Result{
		Stdout:   limitOutput(stdout.String(), r.maxOutputKB),
		Stderr:   limitOutput(stderr.String(), r.maxOutputKB),
		Duration: elapsed,
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		r.logger.Warn("command timed out", "binary", argv[0], "timeout", r.timeout)
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return res, fmt.Errorf("binary %q not found: %w", argv[0], err)
		}
		return res, fmt.Errorf("failed to start %q: %w", argv[0], err)
	}

	res.ExitCode = 0
	return res, nil
}

func limitOutput(s string, maxKB int) string {
	if maxKB <= 0 {
		return s
	}
	limit := maxKB * 1024
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}
