// Package locator classifies where and how a module's tests live. It only
// inspects the filesystem; execution is the runner's job.
package locator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/assets"
	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/generator"
)

// Finder searches the workspace for master test files of a module
type Finder interface {
	FindTestFiles(ctx context.Context, moduleID, ext string) ([]string, error)
}

// Definitions provides raw exercise definitions
type Definitions interface {
	ExerciseFiles(ctx context.Context, moduleID string) ([]assets.ExerciseFile, error)
}

// Locator resolves a module's test structure
type Locator struct {
	courseDir string
	finder    Finder
	defs      Definitions
	logger    *slog.Logger
}

// New creates a locator for the course whose manifest lives in courseDir.
// finder and defs may be nil to disable their rules.
func New(courseDir string, finder Finder, defs Definitions, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{courseDir: courseDir, finder: finder, defs: defs, logger: logger}
}

// Locate classifies the tests of moduleID. A module without tests yields a
// NotFound structure, not an error.
func (l *Locator) Locate(ctx context.Context, moduleID, language string) (Structure, error) {
	if err := domain.ValidateModuleID(moduleID); err != nil {
		return Structure{}, err
	}
	profile, err := generator.ProfileFor(language)
	if err != nil {
		return Structure{}, err
	}

	snap, err := l.Snapshot(ctx, moduleID, language, profile.Extension())
	if err != nil {
		return Structure{}, err
	}

	st := Classify(snap)
	l.logger.Debug("tests located",
		"module", moduleID,
		"kind", st.Kind.String(),
		"dir", st.ModuleDir,
		"definitions", len(st.Definitions),
	)
	return st, nil
}

// Snapshot gathers the filesystem facts for moduleID
func (l *Locator) Snapshot(ctx context.Context, moduleID, language, ext string) (*Snapshot, error) {
	snap := &Snapshot{ModuleID: moduleID, Language: language}
	testName := "tests." + ext

	if l.finder != nil {
		files, err := l.finder.FindTestFiles(ctx, moduleID, ext)
		if err != nil {
			l.logger.Warn("workspace search failed", "module", moduleID, "error", err)
		}
		for _, f := range files {
			snap.Found = append(snap.Found, inspect(filepath.Dir(f), testName))
		}
		// copies inside the course folder win over stray ones elsewhere
		if l.courseDir != "" {
			sort.SliceStable(snap.Found, func(i, j int) bool {
				return within(l.courseDir, snap.Found[i].Dir) && !within(l.courseDir, snap.Found[j].Dir)
			})
		}
	}

	if l.courseDir != "" {
		snap.SolutionDir = filepath.Join(l.courseDir, moduleID)
		for _, dir := range []string{
			filepath.Join(l.courseDir, moduleID),
			filepath.Join(l.courseDir, "tests", domain.CourseFolderName(language), moduleID),
		} {
			snap.Candidates = append(snap.Candidates, inspect(dir, testName))
		}
	}

	if l.defs != nil {
		defs, err := l.defs.ExerciseFiles(ctx, moduleID)
		if err != nil {
			l.logger.Warn("exercise definitions unavailable", "module", moduleID, "error", err)
		}
		snap.Definitions = defs
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

func inspect(dir, testName string) DirState {
	st := DirState{Dir: dir}
	if isFile(filepath.Join(dir, testName)) {
		st.TestFile = filepath.Join(dir, testName)
	}
	st.HasExercises = isDir(filepath.Join(dir, "exercises"))
	st.HasTests = isDir(filepath.Join(dir, "tests"))
	return st
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// WorkspaceFinder walks a workspace for <moduleID>/tests.<ext> files
type WorkspaceFinder struct {
	Root     string
	MaxDepth int
}

// NewWorkspaceFinder creates a finder rooted at root
func NewWorkspaceFinder(root string) *WorkspaceFinder {
	return &WorkspaceFinder{Root: root, MaxDepth: 6}
}

var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
}

// FindTestFiles returns matching files in lexical walk order
func (f *WorkspaceFinder) FindTestFiles(ctx context.Context, moduleID, ext string) ([]string, error) {
	testName := "tests." + ext
	var found []string

	err := filepath.WalkDir(f.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == f.Root {
				return err
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path == f.Root {
				return nil
			}
			if skipDirs[d.Name()] || f.depth(path) > f.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() == testName && filepath.Base(filepath.Dir(path)) == moduleID {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", f.Root, err)
	}
	return found, nil
}

func (f *WorkspaceFinder) depth(path string) int {
	rel, err := filepath.Rel(f.Root, path)
	if err != nil {
		return 0
	}
	n := 1
	for _, c := range rel {
		if c == filepath.Separator {
			n++
		}
	}
	return n
}
