// Package runner executes a module's located tests in a child process and
// reduces the outcome to a domain.TestReport.
package runner

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/courseforge/internal/harness"
)

// ErrSpawn is returned by a CodeRunner when the process could not be started
var ErrSpawn = errors.New("could not start test process")

// Command is one process invocation. Args must be relative to Dir so the
// same command works on the host and inside a container.
type Command struct {
	Language string
	Program  string
	Args     []string
	Dir      string
	Env      []string
	Timeout  time.Duration
}

// ExecResult is the raw outcome of a process
type ExecResult struct {
	ExitCode int
	Stderr   string
	Output   string // stdout and stderr interleaved in arrival order
	TimedOut bool
	Duration time.Duration
}

// CodeRunner runs a command to completion. Non-zero exits and timeouts are
// reported in the result; an error means the process never ran.
type CodeRunner interface {
	Run(ctx context.Context, cmd Command) (*ExecResult, error)
}

// Config holds runner configuration
type Config struct {
	Timeout time.Duration
	Harness harness.Mode
	Node    string
	Python  string
}

// DefaultConfig returns default runner configuration
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Harness: harness.ModeAuto,
		Node:    "node",
		Python:  "python3",
	}
}

// program returns the interpreter for language
func (c Config) program(language string) string {
	switch language {
	case "python":
		if c.Python != "" {
			return c.Python
		}
		return "python3"
	default:
		if c.Node != "" {
			return c.Node
		}
		return "node"
	}
}

// syncBuffer is shared by the stdout and stderr copiers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
