package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestScaffoldModule(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	written, err := ScaffoldModule(ctx, dir, ModuleScaffold{ID: "04-arrays", Title: "Arrays"}, nil)
	if err != nil {
		t.Fatalf("ScaffoldModule() error = %v", err)
	}
	if len(written) != 4 {
		t.Errorf("wrote %d files, want 4: %v", len(written), written)
	}

	src := NewFSSource(os.DirFS(dir), nil)
	index, err := src.Index(ctx)
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	want := []domain.ModuleInfo{{ID: "04-arrays", Title: "Arrays"}}
	if diff := cmp.Diff(want, index); diff != "" {
		t.Errorf("Index() mismatch (-want +got):\n%s", diff)
	}

	files, err := src.ExerciseFiles(ctx, "04-arrays")
	if err != nil || len(files) != 1 || files[0].Name != "exampleFunction" {
		t.Fatalf("ExerciseFiles() = %+v, %v", files, err)
	}
	if files[0].JSTest == "" || files[0].PyTest == "" {
		t.Errorf("placeholder definition has no tests: %+v", files[0])
	}

	lesson, err := src.LessonTemplate(ctx, "04-arrays")
	if err != nil {
		t.Fatalf("LessonTemplate() error = %v", err)
	}
	if !strings.HasPrefix(lesson, "# Arrays") || strings.Contains(lesson, "{{moduleId}}") {
		t.Errorf("lesson not customized:\n%s", lesson)
	}
	if !strings.Contains(lesson, "{{functionList}}") {
		t.Error("generation placeholders must survive scaffolding")
	}

	meta, err := src.Metadata(ctx, "04-arrays")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultResources["python"], meta.ResourcesFor("python")); diff != "" {
		t.Errorf("resources mismatch (-want +got):\n%s", diff)
	}
}

func TestScaffoldModule_UsesTreeBaseTemplate(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "templates", "chapters", "base-template.md")
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("custom {{moduleId}}"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ScaffoldModule(context.Background(), dir, ModuleScaffold{ID: "05-maps", Title: "Maps"}, nil); err != nil {
		t.Fatalf("ScaffoldModule() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "templates", "chapters", "05-maps.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "custom 05-maps" {
		t.Errorf("lesson = %q", data)
	}
}

func TestScaffoldModule_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	if _, err := ScaffoldModule(ctx, dir, ModuleScaffold{ID: "04-arrays", Title: "Arrays"}, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		sc      ModuleScaffold
		wantErr error
	}{
		{name: "exists", sc: ModuleScaffold{ID: "04-arrays", Title: "Again"}, wantErr: domain.ErrModuleExists},
		{name: "bad id", sc: ModuleScaffold{ID: "Arrays", Title: "Arrays"}, wantErr: domain.ErrInvalidModuleID},
		{name: "traversal", sc: ModuleScaffold{ID: "../06-x", Title: "X"}, wantErr: domain.ErrInvalidModuleID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScaffoldModule(ctx, dir, tc.sc, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ScaffoldModule() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if _, err := ScaffoldModule(ctx, dir, ModuleScaffold{ID: "06-sets", Title: "  "}, nil); err == nil {
		t.Error("ScaffoldModule() accepted an empty title")
	}
}
