package assets

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// Registry caches lookups against a Source. Course assets do not change
// while the process runs, so entries never expire; Reset drops them.
type Registry struct {
	src Source

	mu        sync.RWMutex
	index     []domain.ModuleInfo
	exercises map[string][]domain.Exercise
	metadata  map[string]*domain.ModuleMetadata
	templates map[string]string
}

// NewRegistry creates a caching registry over src
func NewRegistry(src Source) *Registry {
	r := &Registry{src: src}
	r.Reset()
	return r
}

// Reset drops every cached entry
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = nil
	r.exercises = make(map[string][]domain.Exercise)
	r.metadata = make(map[string]*domain.ModuleMetadata)
	r.templates = make(map[string]string)
}

// Index returns the cached module index
func (r *Registry) Index(ctx context.Context) ([]domain.ModuleInfo, error) {
	r.mu.RLock()
	idx := r.index
	r.mu.RUnlock()
	if idx != nil {
		return cloneModules(idx), nil
	}

	idx, err := r.src.Index(ctx)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		idx = []domain.ModuleInfo{}
	}

	r.mu.Lock()
	r.index = idx
	r.mu.Unlock()

	return cloneModules(idx), nil
}

// Exercises returns the cached exercises of a module
func (r *Registry) Exercises(ctx context.Context, moduleID string) ([]domain.Exercise, error) {
	r.mu.RLock()
	ex, ok := r.exercises[moduleID]
	r.mu.RUnlock()
	if ok {
		return ex, nil
	}

	ex, err := r.src.Exercises(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.exercises[moduleID] = ex
	r.mu.Unlock()

	return ex, nil
}

// Metadata returns the cached metadata of a module
func (r *Registry) Metadata(ctx context.Context, moduleID string) (*domain.ModuleMetadata, error) {
	r.mu.RLock()
	meta, ok := r.metadata[moduleID]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	meta, err := r.src.Metadata(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.metadata[moduleID] = meta
	r.mu.Unlock()

	return meta, nil
}

// LessonTemplate returns the cached lesson template of a module
func (r *Registry) LessonTemplate(ctx context.Context, moduleID string) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[moduleID]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := r.src.LessonTemplate(ctx, moduleID)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.templates[moduleID] = tmpl
	r.mu.Unlock()

	return tmpl, nil
}

func cloneModules(in []domain.ModuleInfo) []domain.ModuleInfo {
	out := make([]domain.ModuleInfo, len(in))
	copy(out, in)
	return out
}
