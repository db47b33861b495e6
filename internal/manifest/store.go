// Package manifest reads and writes the course.json progress file of a
// workspace.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// skipDirs are never searched for a manifest
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// Store provides locking access to the manifest of one workspace
type Store struct {
	root   string
	logger *slog.Logger

	mu   sync.RWMutex
	path string
}

// NewStore creates a store for the workspace rooted at root
func NewStore(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger}
}

// Root returns the workspace root
func (s *Store) Root() string {
	return s.root
}

// Path returns the manifest location, empty until located or created
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// CourseDir returns the directory holding the manifest, empty until located
func (s *Store) CourseDir() string {
	if p := s.Path(); p != "" {
		return filepath.Dir(p)
	}
	return ""
}

// Locate finds the manifest. A course.json directly under the root wins;
// otherwise the first one in lexical walk order is used.
func (s *Store) Locate(ctx context.Context) (string, error) {
	direct := filepath.Join(s.root, domain.ManifestFileName)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		s.setPath(direct)
		return direct, nil
	}

	var found string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			// unreadable subtrees are skipped
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != s.root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == domain.ManifestFileName {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search workspace: %w", err)
	}
	if found == "" {
		return "", domain.ErrCourseNotFound
	}

	s.setPath(found)
	return found, nil
}

// Load reads the manifest, locating it first when needed. Missing or
// unreadable manifests are reported as domain.ErrCourseNotFound and
// structurally broken ones as domain.ErrInvalidManifest.
func (s *Store) Load(ctx context.Context) (*domain.CourseManifest, error) {
	path := s.Path()
	if path == "" {
		located, err := s.Locate(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrCourseNotFound) {
				s.logger.Warn("manifest search failed", "root", s.root, "error", err)
				return nil, fmt.Errorf("%w: %w", domain.ErrCourseNotFound, err)
			}
			return nil, err
		}
		path = located
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn("manifest unreadable", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrCourseNotFound, err)
	}

	var m domain.CourseManifest
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("manifest unparsable", "path", path, "error", err)
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrCourseNotFound, path, err)
	}

	// progression invariants are enforced on Save; a manifest with a stale
	// current module must still load so the guard can handle it
	if err := m.ValidateStructure(); err != nil {
		s.logger.Warn("manifest invalid", "path", path, "error", err)
		return nil, err
	}
	if err := m.Validate(); err != nil {
		s.logger.Warn("manifest inconsistent", "path", path, "error", err)
	}

	return &m, nil
}

// Save overwrites the located manifest with m
func (s *Store) Save(ctx context.Context, m *domain.CourseManifest) error {
	path := s.Path()
	if path == "" {
		return domain.ErrManifestPathUnknown
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeManifest(path, m)
}

// Create writes a new manifest into dir and makes it the store's manifest.
// It fails with domain.ErrCourseExists when dir already holds one.
func (s *Store) Create(ctx context.Context, dir string, m *domain.CourseManifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	path := filepath.Join(dir, domain.ManifestFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrCourseExists, path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create course directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeManifest(path, m); err != nil {
		return err
	}
	s.path = path
	return nil
}

func (s *Store) setPath(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

// writeManifest replaces path atomically with two-space indented JSON and a
// trailing newline.
func writeManifest(path string, m *domain.CourseManifest) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".course-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(m); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
