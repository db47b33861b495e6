// Package generator materializes a module directory: the lesson document,
// starter files for every exercise, their tests and a master test runner.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/courseforge/internal/assets"
	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// LessonFile is the lesson document written into every module directory
const LessonFile = "exercise.md"

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Generator writes module directories from an asset source
type Generator struct {
	src      assets.Source
	logger   *slog.Logger
	parallel int
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithParallelism bounds concurrent file writes
func WithParallelism(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.parallel = n
		}
	}
}

// New creates a generator over src
func New(src assets.Source, opts ...Option) *Generator {
	g := &Generator{
		src:      src,
		logger:   slog.Default(),
		parallel: 8,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate writes the directory of module under courseRoot. Existing files
// are overwritten. A failed write aborts with an error naming the path; the
// directory may then be partially written.
func (g *Generator) Generate(ctx context.Context, courseRoot string, module domain.ModuleInfo, language string) error {
	profile, err := ProfileFor(language)
	if err != nil {
		return err
	}
	if err := domain.ValidateModuleID(module.ID); err != nil {
		return err
	}
	if module.Title == "" {
		module.Title = module.ID
	}

	exercises := g.exercises(ctx, module.ID)
	lesson := g.lesson(ctx, module, profile.Extension(), language, exercises)

	files, err := profile.Files(module, exercises)
	if err != nil {
		return fmt.Errorf("render module %s: %w", module.ID, err)
	}
	files = append(files, File{Path: LessonFile, Content: []byte(lesson)})

	moduleDir := filepath.Join(courseRoot, module.ID)
	if err := makeDirs(moduleDir, files); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	for _, f := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			target := filepath.Join(moduleDir, filepath.FromSlash(f.Path))
			if err := os.WriteFile(target, f.Content, filePerm); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	g.logger.Info("module generated",
		"module", module.ID,
		"language", language,
		"exercises", len(exercises),
		"files", len(files),
	)
	return nil
}

func (g *Generator) exercises(ctx context.Context, moduleID string) []domain.Exercise {
	exercises, err := g.src.Exercises(ctx, moduleID)
	if err != nil {
		g.logger.Warn("exercise content unavailable, using placeholder", "module", moduleID, "error", err)
		return []domain.Exercise{domain.PlaceholderExercise()}
	}
	if len(exercises) == 0 {
		return []domain.Exercise{domain.PlaceholderExercise()}
	}
	return exercises
}

func (g *Generator) lesson(ctx context.Context, module domain.ModuleInfo, ext, language string, exercises []domain.Exercise) string {
	tmpl, err := g.src.LessonTemplate(ctx, module.ID)
	if err != nil && !errors.Is(err, assets.ErrNoTemplate) {
		g.logger.Warn("lesson template unavailable", "module", module.ID, "error", err)
	}

	meta, err := g.src.Metadata(ctx, module.ID)
	if err != nil {
		g.logger.Warn("module metadata unavailable", "module", module.ID, "error", err)
		meta = nil
	}

	return RenderLesson(tmpl, LessonData{
		ModuleID:    module.ID,
		ModuleTitle: module.Title,
		Extension:   ext,
		Exercises:   exercises,
		Resources:   meta.ResourcesFor(language),
	})
}

// makeDirs creates the module directory and every parent of files, in a
// stable order before any file is written.
func makeDirs(moduleDir string, files []File) error {
	dirs := map[string]bool{moduleDir: true}
	for _, f := range files {
		dirs[filepath.Dir(filepath.Join(moduleDir, filepath.FromSlash(f.Path)))] = true
	}

	sorted := make([]string, 0, len(dirs))
	for d := range dirs {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	for _, d := range sorted {
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}
