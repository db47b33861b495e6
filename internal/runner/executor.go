package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/generator"
	"github.com/felixgeelhaar/courseforge/internal/harness"
	"github.com/felixgeelhaar/courseforge/internal/locator"
)

// harnessScript is the base name of the runner script written next to the
// tests for the duration of one run
const harnessScript = ".courseforge-harness"

// Executor runs located tests through a CodeRunner
type Executor struct {
	runner CodeRunner
	cfg    Config
	parser *Parser
	logger *slog.Logger
}

// NewExecutor creates an executor. Zero config fields take their defaults.
func NewExecutor(runner CodeRunner, cfg Config, logger *slog.Logger) *Executor {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Harness == "" {
		cfg.Harness = defaults.Harness
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		runner: runner,
		cfg:    cfg,
		parser: NewParser(),
		logger: logger,
	}
}

// Execute runs the tests described by st. Failing, crashing and hanging
// tests all produce a report with Passed false; an error is returned only
// when there is nothing to run or ctx is done.
func (e *Executor) Execute(ctx context.Context, st locator.Structure) (*domain.TestReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch st.Kind {
	case locator.SingleFile, locator.MultiFile:
		return e.runDirectory(ctx, st)
	case locator.SplitDefinitions:
		return e.runDefinitions(ctx, st)
	default:
		return nil, fmt.Errorf("%w for module %s", domain.ErrTestsNotFound, st.ModuleID)
	}
}

func (e *Executor) runDirectory(ctx context.Context, st locator.Structure) (*domain.TestReport, error) {
	profile, err := generator.ProfileFor(st.Language)
	if err != nil {
		return nil, err
	}

	script, err := e.script(st)
	if err != nil {
		return e.failed(st, fmt.Sprintf("could not prepare test runner: %v", err)), nil
	}

	name := harnessScript + "." + profile.Extension()
	scriptPath := filepath.Join(st.ModuleDir, name)
	if err := os.WriteFile(scriptPath, script, 0644); err != nil {
		return e.failed(st, fmt.Sprintf("could not prepare test runner: %v", err)), nil
	}
	defer func() {
		if err := os.Remove(scriptPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("remove harness script", "path", scriptPath, "error", err)
		}
	}()

	e.logger.Debug("running tests",
		"module", st.ModuleID,
		"layout", st.Kind.String(),
		"dir", st.ModuleDir,
	)

	res, err := e.runner.Run(ctx, e.command(st.Language, st.ModuleDir, name))
	if err != nil {
		return e.failed(st, spawnMessage(st.Language, err)), nil
	}
	return e.report(st, res), nil
}

// script assembles the harness for a single-file or multi-file layout
func (e *Executor) script(st locator.Structure) ([]byte, error) {
	switch st.Language {
	case generator.LanguagePython:
		opts := harness.PythonOptions{ModuleID: st.ModuleID}
		if st.Kind == locator.MultiFile {
			opts.StartDir = "tests"
			opts.Pattern = "test_*.py"
		} else {
			opts.Pattern = filepath.Base(st.TestFile)
		}
		return harness.Python(opts)

	default:
		files, err := e.javascriptFiles(st)
		if err != nil {
			return nil, err
		}
		return harness.JavaScript(harness.JavaScriptOptions{
			ModuleID: st.ModuleID,
			Files:    files,
			Mode:     e.cfg.Harness,
		})
	}
}

// javascriptFiles lists the test files relative to the module directory.
// Multi-file layouts run the per-exercise tests; the master runner is only
// used when none exist.
func (e *Executor) javascriptFiles(st locator.Structure) ([]string, error) {
	if st.Kind == locator.MultiFile {
		matches, err := filepath.Glob(filepath.Join(st.ModuleDir, "tests", "*.test.js"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			files := make([]string, 0, len(matches))
			for _, m := range matches {
				rel, err := filepath.Rel(st.ModuleDir, m)
				if err != nil {
					return nil, err
				}
				files = append(files, filepath.ToSlash(rel))
			}
			return files, nil
		}
	}

	if st.TestFile == "" {
		return nil, fmt.Errorf("%w in %s", domain.ErrTestsNotFound, st.ModuleDir)
	}
	rel, err := filepath.Rel(st.ModuleDir, st.TestFile)
	if err != nil {
		return nil, err
	}
	return []string{filepath.ToSlash(rel)}, nil
}

func (e *Executor) command(language, dir, script string) Command {
	env := []string{"COURSEFORGE_HARNESS=" + string(e.cfg.Harness)}
	if language == generator.LanguagePython {
		env = append(env, "PYTHONDONTWRITEBYTECODE=1")
	}
	return Command{
		Language: language,
		Program:  e.cfg.program(language),
		Args:     []string{script},
		Dir:      dir,
		Env:      env,
		Timeout:  e.cfg.Timeout,
	}
}

// verdict applies the pass rule: exit code zero, no timeout, and when counts
// are known at least one test ran and none failed
func verdict(res *ExecResult, sum Summary) bool {
	if res.ExitCode != 0 || res.TimedOut {
		return false
	}
	if sum.Known && (sum.Total == 0 || sum.Failed > 0) {
		return false
	}
	return true
}

func (e *Executor) report(st locator.Structure, res *ExecResult) *domain.TestReport {
	sum := e.parser.Parse(res.Output)
	report := &domain.TestReport{
		Passed:      verdict(res, sum),
		Output:      res.Output,
		Layout:      st.Kind.String(),
		Harness:     sum.Harness,
		Total:       sum.Total,
		Succeeded:   sum.Passed,
		Failed:      sum.Failed,
		CountsKnown: sum.Known,
		TimedOut:    res.TimedOut,
		Duration:    res.Duration,
	}
	report.Message = e.message(report, res)
	return report
}

func (e *Executor) message(r *domain.TestReport, res *ExecResult) string {
	switch {
	case r.TimedOut:
		return fmt.Sprintf("tests did not finish within %s and were stopped", e.cfg.Timeout.Round(time.Second))
	case r.Passed && r.CountsKnown:
		return fmt.Sprintf("all %d tests passed", r.Total)
	case r.Passed:
		return "tests passed"
	case r.CountsKnown && r.Total == 0:
		return "no tests were run"
	case r.CountsKnown && r.Failed > 0:
		return fmt.Sprintf("%d of %d tests failed", r.Failed, r.Total)
	case lastLine(res.Stderr) != "":
		return fmt.Sprintf("test process exited with code %d: %s", res.ExitCode, lastLine(res.Stderr))
	default:
		return fmt.Sprintf("test process exited with code %d", res.ExitCode)
	}
}

// lastLine returns the last non-blank line of s, which for a crashed
// interpreter is usually the error itself
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n \t"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func (e *Executor) failed(st locator.Structure, msg string) *domain.TestReport {
	e.logger.Warn("test run failed to execute", "module", st.ModuleID, "reason", msg)
	return &domain.TestReport{
		Output:  msg + "\n",
		Layout:  st.Kind.String(),
		Message: msg,
	}
}

func spawnMessage(language string, err error) string {
	if errors.Is(err, ErrSpawn) {
		return fmt.Sprintf("could not start the %s runtime, is it installed? (%v)", language, err)
	}
	return fmt.Sprintf("could not run tests: %v", err)
}
