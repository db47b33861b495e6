package progress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

type fakeStore struct {
	dir   string
	saved []*domain.CourseManifest
	err   error
}

func (s *fakeStore) Save(ctx context.Context, m *domain.CourseManifest) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, m.Clone())
	return nil
}

func (s *fakeStore) CourseDir() string { return s.dir }

type fakeGenerator struct {
	generated []string
	err       error
}

func (g *fakeGenerator) Generate(ctx context.Context, courseRoot string, module domain.ModuleInfo, language string) error {
	if g.err != nil {
		return g.err
	}
	g.generated = append(g.generated, module.ID)
	return os.MkdirAll(filepath.Join(courseRoot, module.ID), 0755)
}

func course(t *testing.T) *domain.CourseManifest {
	t.Helper()
	m, err := domain.NewCourseManifest("javascript", []domain.ModuleInfo{
		{ID: "01-intro"},
		{ID: "02-variables"},
		{ID: "03-loops"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func statuses(m *domain.CourseManifest) []domain.ModuleStatus {
	out := make([]domain.ModuleStatus, len(m.Modules))
	for i, mod := range m.Modules {
		out[i] = mod.Status
	}
	return out
}

func TestCompleteCurrentModule(t *testing.T) {
	store := &fakeStore{dir: t.TempDir()}
	gen := &fakeGenerator{}
	mgr := NewManager(store, gen, nil)

	in := course(t)
	out, err := mgr.CompleteCurrentModule(context.Background(), in)
	if err != nil {
		t.Fatalf("CompleteCurrentModule() error = %v", err)
	}

	want := []domain.ModuleStatus{domain.ModuleCompleted, domain.ModuleActive, domain.ModuleLocked}
	got := statuses(out)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Modules[%d].Status = %s, want %s", i, got[i], want[i])
		}
	}
	if out.CurrentModule != "02-variables" {
		t.Errorf("CurrentModule = %s, want 02-variables", out.CurrentModule)
	}
	if len(gen.generated) != 1 || gen.generated[0] != "02-variables" {
		t.Errorf("generated = %v, want [02-variables]", gen.generated)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(store.saved))
	}
	if in.Modules[0].Status != domain.ModuleActive {
		t.Error("input manifest was mutated")
	}
	if err := out.Validate(); err != nil {
		t.Errorf("result invalid: %v", err)
	}
}

func TestCompleteCurrentModule_SkipsExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "02-variables"), 0755); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGenerator{}
	mgr := NewManager(&fakeStore{dir: dir}, gen, nil)

	if _, err := mgr.CompleteCurrentModule(context.Background(), course(t)); err != nil {
		t.Fatalf("CompleteCurrentModule() error = %v", err)
	}
	if len(gen.generated) != 0 {
		t.Errorf("generated = %v, want none", gen.generated)
	}
}

func TestCompleteCurrentModule_LastModule(t *testing.T) {
	store := &fakeStore{dir: t.TempDir()}
	gen := &fakeGenerator{}
	mgr := NewManager(store, gen, nil)
	ctx := context.Background()

	m := course(t)
	var err error
	for i := 0; i < 3; i++ {
		m, err = mgr.CompleteCurrentModule(ctx, m)
		if err != nil {
			t.Fatalf("step %d: error = %v", i, err)
		}
	}

	if !m.CourseCompleted {
		t.Error("CourseCompleted = false after last module")
	}
	if m.CurrentModule != "03-loops" {
		t.Errorf("CurrentModule = %s, want 03-loops", m.CurrentModule)
	}
	if m.CompletedCount() != 3 {
		t.Errorf("CompletedCount() = %d, want 3", m.CompletedCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("terminal manifest invalid: %v", err)
	}

	// completing again is a no-op
	again, err := mgr.CompleteCurrentModule(ctx, m)
	if err != nil {
		t.Fatalf("repeat error = %v", err)
	}
	if again != m {
		t.Error("completed course was modified")
	}
	if len(store.saved) != 3 {
		t.Errorf("saves = %d, want 3", len(store.saved))
	}
}

func TestCompleteCurrentModule_StaleCurrent(t *testing.T) {
	store := &fakeStore{dir: t.TempDir()}
	mgr := NewManager(store, &fakeGenerator{}, nil)

	m := course(t)
	m.CurrentModule = "99-gone"

	out, err := mgr.CompleteCurrentModule(context.Background(), m)
	if err != nil {
		t.Fatalf("CompleteCurrentModule() error = %v", err)
	}
	if out != m {
		t.Error("stale manifest was not returned unchanged")
	}
	if len(store.saved) != 0 {
		t.Error("stale manifest was saved")
	}
}

func TestCompleteCurrentModule_GenerationFailure(t *testing.T) {
	store := &fakeStore{dir: t.TempDir()}
	boom := errors.New("disk full")
	mgr := NewManager(store, &fakeGenerator{err: boom}, nil)

	m := course(t)
	_, err := mgr.CompleteCurrentModule(context.Background(), m)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want disk full", err)
	}
	if len(store.saved) != 0 {
		t.Error("progress was saved despite generation failure")
	}
	if m.CurrentModule != "01-intro" {
		t.Error("input manifest was mutated")
	}
}

func TestCompleteCurrentModule_SaveFailure(t *testing.T) {
	boom := errors.New("read-only")
	mgr := NewManager(&fakeStore{dir: t.TempDir(), err: boom}, &fakeGenerator{}, nil)

	_, err := mgr.CompleteCurrentModule(context.Background(), course(t))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want read-only", err)
	}
}

func TestCompleteCurrentModule_UnknownLocation(t *testing.T) {
	mgr := NewManager(&fakeStore{}, &fakeGenerator{}, nil)

	_, err := mgr.CompleteCurrentModule(context.Background(), course(t))
	if !errors.Is(err, domain.ErrManifestPathUnknown) {
		t.Errorf("error = %v, want ErrManifestPathUnknown", err)
	}
}
