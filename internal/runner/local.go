package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// killGrace bounds how long Wait keeps draining pipes after the process
// group was killed.
const killGrace = 2 * time.Second

// LocalRunner runs commands as host processes
type LocalRunner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewLocalRunner creates a runner that applies timeout to commands without one
func NewLocalRunner(timeout time.Duration, logger *slog.Logger) *LocalRunner {
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalRunner{timeout: timeout, logger: logger}
}

func (r *LocalRunner) Run(ctx context.Context, c Command) (*ExecResult, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.WaitDelay = killGrace
	configureProcessGroup(cmd)

	var stderr bytes.Buffer
	combined := &syncBuffer{}
	cmd.Stdout = combined
	cmd.Stderr = io.MultiWriter(&stderr, combined)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, c.Program, err)
	}

	err := cmd.Wait()
	result := &ExecResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stderr:   stderr.String(),
		Output:   combined.String(),
		Duration: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		r.logger.Warn("test process killed after timeout",
			"program", c.Program,
			"dir", c.Dir,
			"timeout", timeout,
		)
	} else if err != nil && !errors.As(err, new(*exec.ExitError)) {
		r.logger.Debug("test process wait failed", "program", c.Program, "error", err)
	}

	return result, nil
}
