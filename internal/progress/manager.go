// Package progress advances a course through its modules. It is the only
// writer of module status.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// ManifestStore persists the manifest
type ManifestStore interface {
	Save(ctx context.Context, m *domain.CourseManifest) error
	CourseDir() string
}

// ModuleGenerator materializes a module directory
type ModuleGenerator interface {
	Generate(ctx context.Context, courseRoot string, module domain.ModuleInfo, language string) error
}

// Manager applies progression transitions
type Manager struct {
	store  ManifestStore
	gen    ModuleGenerator
	logger *slog.Logger
}

// NewManager creates a progress manager
func NewManager(store ManifestStore, gen ModuleGenerator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, gen: gen, logger: logger}
}

// CompleteCurrentModule marks the current module completed, unlocks and
// scaffolds the next one, and persists the result. The next module's
// directory is only generated when it does not exist yet. After the last
// module the course is marked completed and CurrentModule keeps naming it.
//
// The input manifest is never modified. A stale CurrentModule, or a course
// that is already completed, returns the input unchanged. When generation
// or saving fails nothing is persisted and the error is returned.
func (m *Manager) CompleteCurrentModule(ctx context.Context, manifest *domain.CourseManifest) (*domain.CourseManifest, error) {
	idx := manifest.ModuleIndex(manifest.CurrentModule)
	if idx < 0 {
		m.logger.Warn("current module not in manifest, nothing to complete", "current", manifest.CurrentModule)
		return manifest, nil
	}
	if manifest.CourseCompleted {
		return manifest, nil
	}

	next := manifest.Clone()
	current := &next.Modules[idx]
	if !current.Status.CanTransitionTo(domain.ModuleCompleted) {
		return nil, fmt.Errorf("%w: module %s cannot complete from %s", domain.ErrInvalidManifest, current.ID, current.Status)
	}
	current.Status = domain.ModuleCompleted

	if idx+1 < len(next.Modules) {
		unlocked := &next.Modules[idx+1]
		if unlocked.Status.CanTransitionTo(domain.ModuleActive) {
			unlocked.Status = domain.ModuleActive
		}
		next.CurrentModule = unlocked.ID

		if err := m.ensureGenerated(ctx, next.Language, *unlocked); err != nil {
			return nil, err
		}
	} else {
		next.CourseCompleted = true
	}

	if err := m.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	m.logger.Info("module completed",
		"module", current.ID,
		"current", next.CurrentModule,
		"course_completed", next.CourseCompleted,
	)
	return next, nil
}

func (m *Manager) ensureGenerated(ctx context.Context, language string, module domain.ModuleInfo) error {
	courseDir := m.store.CourseDir()
	if courseDir == "" {
		return domain.ErrManifestPathUnknown
	}

	dir := filepath.Join(courseDir, module.ID)
	_, err := os.Stat(dir)
	switch {
	case err == nil:
		m.logger.Debug("module directory exists, not regenerating", "module", module.ID)
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if err := m.gen.Generate(ctx, courseDir, module, language); err != nil {
		return fmt.Errorf("generate module %s: %w", module.ID, err)
	}
	return nil
}
