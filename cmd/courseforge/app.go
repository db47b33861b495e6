package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/felixgeelhaar/courseforge/internal/assets"
	"github.com/felixgeelhaar/courseforge/internal/config"
	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/harness"
	"github.com/felixgeelhaar/courseforge/internal/history"
	"github.com/felixgeelhaar/courseforge/internal/locator"
	"github.com/felixgeelhaar/courseforge/internal/runner"
)

// app holds everything a command needs, built from configuration
type app struct {
	cfg     *config.LocalConfig
	root    string
	courses *course.Service
	history *history.Store
	logger  *slog.Logger
	closers []func() error
}

// newApp loads configuration, sets up logging and wires the course service.
// The test runner is only created when withRunner is set so commands that
// never run tests do not need Docker.
func newApp(ctx context.Context, withRunner bool) (*app, error) {
	dir, err := config.EnsureDir()
	if err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if assetsFlag != "" {
		cfg.AssetsDir = assetsFlag
	}

	a := &app{cfg: cfg}

	level := parseLogLevel(cfg.LogLevel)
	if verboseFlag {
		level = slog.LevelDebug
	}
	logFile, err := setupLogging(dir, level)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	a.closers = append(a.closers, logFile.Close)
	a.logger = slog.Default()

	a.root, err = workspaceRoot()
	if err != nil {
		a.Close()
		return nil, err
	}

	src, err := assets.Open(cfg.AssetsDir, a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var exec course.Executor = unavailableExecutor{}
	if withRunner {
		r, err := a.codeRunner()
		if err != nil {
			a.Close()
			return nil, err
		}
		exec = runner.NewExecutor(r, runner.Config{
			Timeout: cfg.Runner.Timeout(),
			Harness: harness.Mode(cfg.Runner.Harness),
			Node:    cfg.Runner.Node,
			Python:  cfg.Runner.Python,
		}, a.logger)
	}

	opts := []course.Option{course.WithLogger(a.logger)}
	if cfg.History.Enabled {
		if store, err := a.openHistory(ctx); err != nil {
			a.logger.Warn("run history disabled", "error", err)
		} else {
			opts = append(opts, course.WithHistory(store))
		}
	}

	a.courses = course.NewService(a.root, src, exec, opts...)
	return a, nil
}

func (a *app) codeRunner() (runner.CodeRunner, error) {
	rc := a.cfg.Runner
	if rc.Executor != "docker" {
		return runner.NewLocalRunner(rc.Timeout(), a.logger), nil
	}

	dr, err := runner.NewDockerRunner(runner.DockerConfig{
		Images:     rc.Docker.Images,
		MemoryMB:   rc.Docker.MemoryMB,
		CPULimit:   rc.Docker.CPULimit,
		NetworkOff: rc.Docker.NetworkOff,
		Timeout:    rc.Timeout(),
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("docker executor: %w", err)
	}
	a.closers = append(a.closers, dr.Close)
	return dr, nil
}

func (a *app) openHistory(ctx context.Context) (*history.Store, error) {
	if a.history != nil {
		return a.history, nil
	}
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	store, err := history.OpenStore(ctx, path)
	if err != nil {
		return nil, err
	}
	a.history = store
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Debug("close", "error", err)
		}
	}
	a.closers = nil
}

// workspaceRoot resolves --workspace, or else the nearest ancestor of the
// working directory holding a course.json, or else the working directory
func workspaceRoot() (string, error) {
	root := workspaceFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = enclosingCourse(wd)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

func enclosingCourse(dir string) string {
	for d := dir; ; {
		if _, err := os.Stat(filepath.Join(d, domain.ManifestFileName)); err == nil {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}
		d = parent
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// unavailableExecutor backs services built for commands that never run tests
type unavailableExecutor struct{}

func (unavailableExecutor) Execute(context.Context, locator.Structure) (*domain.TestReport, error) {
	return nil, fmt.Errorf("test runner not configured")
}
