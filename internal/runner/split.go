package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/generator"
	"github.com/felixgeelhaar/courseforge/internal/locator"
)

// runDefinitions runs every exercise definition in its own scratch module
// and passes only when all of them pass
func (e *Executor) runDefinitions(ctx context.Context, st locator.Structure) (*domain.TestReport, error) {
	profile, err := generator.ProfileFor(st.Language)
	if err != nil {
		return nil, err
	}

	report := &domain.TestReport{Layout: st.Kind.String(), Passed: true}
	var agg Summary
	var out strings.Builder
	var failedNames []string
	ran := 0

	for _, def := range st.Definitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ex := def.ToDomain()
		if !ex.HasTest(st.Language) {
			e.logger.Debug("definition has no tests", "module", st.ModuleID, "exercise", ex.Name, "language", st.Language)
			continue
		}
		ran++

		fmt.Fprintf(&out, "=== %s ===\n", ex.Name)
		res, err := e.runDefinition(ctx, st, profile, ex)
		if err != nil {
			msg := spawnMessage(st.Language, err)
			out.WriteString(msg + "\n")
			report.Passed = false
			failedNames = append(failedNames, ex.Name)
			if errors.Is(err, ErrSpawn) {
				report.Output = out.String()
				report.Message = msg
				return report, nil
			}
			continue
		}

		out.WriteString(res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			out.WriteString("\n")
		}

		sum := e.parser.Parse(res.Output)
		agg.Add(sum)
		report.Duration += res.Duration
		if res.TimedOut {
			report.TimedOut = true
		}
		if !verdict(res, sum) {
			report.Passed = false
			failedNames = append(failedNames, ex.Name)
		}
	}

	if ran == 0 {
		report.Passed = false
		report.Message = fmt.Sprintf("no %s tests defined for module %s", st.Language, st.ModuleID)
		report.Output = report.Message + "\n"
		return report, nil
	}

	report.Output = out.String()
	report.Harness = agg.Harness
	report.Total = agg.Total
	report.Succeeded = agg.Passed
	report.Failed = agg.Failed
	report.CountsKnown = agg.Known

	switch {
	case report.TimedOut:
		report.Message = fmt.Sprintf("tests did not finish within %s and were stopped", e.cfg.Timeout)
	case report.Passed:
		report.Message = fmt.Sprintf("all %d exercises passed", ran)
	default:
		report.Message = fmt.Sprintf("%d of %d exercises failed: %s", len(failedNames), ran, strings.Join(failedNames, ", "))
	}
	return report, nil
}

// runDefinition renders a one-exercise module into a temp dir, swaps in the
// learner's solution when one exists and runs the module's master runner
func (e *Executor) runDefinition(ctx context.Context, st locator.Structure, profile generator.Profile, ex domain.Exercise) (*ExecResult, error) {
	dir, err := os.MkdirTemp("", "courseforge-run-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files, err := profile.Files(domain.ModuleInfo{ID: st.ModuleID, Title: st.ModuleID}, []domain.Exercise{ex})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ex.Name, err)
	}
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(target, f.Content, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Path, err)
		}
	}

	found, err := placeSolution(st, ex, dir)
	if err != nil {
		return nil, fmt.Errorf("copy solution for %s: %w", ex.Name, err)
	}
	if !found {
		e.logger.Info("no solution file found, using starter template", "module", st.ModuleID, "exercise", ex.Name)
	}

	return e.runner.Run(ctx, e.command(st.Language, dir, "tests."+profile.Extension()))
}

// placeSolution copies the learner's code for ex into the scratch module.
// It reports false when no solution exists and the starter stays in place.
func placeSolution(st locator.Structure, ex domain.Exercise, dir string) (bool, error) {
	if st.SolutionDir == "" {
		return false, nil
	}

	if st.Language == generator.LanguagePython {
		snake := generator.SnakeName(ex.Name)
		target := filepath.Join(dir, "exercises", snake+".py")
		for _, cand := range []string{
			filepath.Join(st.SolutionDir, "exercises", snake+".py"),
			filepath.Join(st.SolutionDir, snake+".py"),
			filepath.Join(st.SolutionDir, ex.Name+".py"),
		} {
			if isRegular(cand) {
				return true, copyFile(cand, target)
			}
		}
		return false, nil
	}

	safe := generator.SafeName(ex.Name)
	target := filepath.Join(dir, "exercises", safe)

	// generated layout: the whole exercise directory including helpers
	if src := filepath.Join(st.SolutionDir, "exercises", safe); isDir(src) && isRegular(filepath.Join(src, "index.js")) {
		entries, err := os.ReadDir(src)
		if err != nil {
			return false, err
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(target, entry.Name())); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	}

	// flat layouts: <name>.js next to the module or under exercises/
	for _, cand := range []string{
		filepath.Join(st.SolutionDir, ex.Name+".js"),
		filepath.Join(st.SolutionDir, "exercises", ex.Name+".js"),
		filepath.Join(st.SolutionDir, "exercises", safe+".js"),
	} {
		if !isRegular(cand) {
			continue
		}
		data, err := os.ReadFile(cand)
		if err != nil {
			return false, err
		}
		code := string(data)
		if !strings.Contains(code, "module.exports") {
			code = strings.TrimRight(code, "\n") + fmt.Sprintf("\n\nmodule.exports = { %s };\n", generator.Identifier(ex.Name))
		}
		return true, os.WriteFile(filepath.Join(target, "index.js"), []byte(code), 0644)
	}
	return false, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func isRegular(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
