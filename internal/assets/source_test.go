package assets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func testFS() fstest.MapFS {
	fsys := fstest.MapFS{
		"exercises/01-intro/b.json":            {Data: []byte(`{"name": "second", "jsTest": "it('b', () => {});"}`)},
		"exercises/01-intro/a.yaml":            {Data: []byte("name: first\ndescription: from yaml\njsTemplate: |\n  function first() {}\n")},
		"exercises/01-intro/broken.json":       {Data: []byte(`{not json`)},
		"exercises/01-intro/notes.txt":         {Data: []byte("ignored")},
		"exercises/02-empty/chapter-info.json": {Data: []byte(`{"id": "02-empty", "title": "Empty"}`)},
		"exercises/01-intro.json":              {Data: []byte(`{"id": "01-intro", "title": "Shadowed", "exercises": []}`)},
		"exercises/backup/01-intro.json":       {Data: []byte(`{"id": "99-backup"}`)},
		"templates/chapters/01-intro.md":       {Data: []byte("chapter intro")},
		"templates/markdown/03-legacy.md":      {Data: []byte("markdown legacy")},
		"templates/chapters/base-template.md":  {Data: []byte("base")},
	}

	fsys["exercises/01-intro/chapter-info.json"] = &fstest.MapFile{Data: []byte(`{
		"id": "01-intro",
		"title": "Introduction",
		"resources": {"javascript": ["https://developer.mozilla.org/a"]}
	}`)}
	fsys["exercises/03-legacy.json"] = &fstest.MapFile{Data: []byte(`{
		"id": "03-legacy",
		"title": "Legacy",
		"resources": {"python": ["https://docs.python.org/3/"]},
		"exercises": [{"name": "legacyFn", "pyTest": "def test_x(self):\n    pass\n"}]
	}`)}
	fsys["templates/metadata/03-legacy.json"] = &fstest.MapFile{Data: []byte(`{
		"chapterTitle": "Old School",
		"resources": {"javascript": ["https://javascript.info"]}
	}`)}

	return fsys
}

func TestFSSource_Index(t *testing.T) {
	src := NewFSSource(testFS(), nil)

	got, err := src.Index(context.Background())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	want := []domain.ModuleInfo{
		{ID: "01-intro", Title: "Introduction"},
		{ID: "02-empty", Title: "Empty"},
		{ID: "03-legacy", Title: "Legacy"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Index() mismatch (-want +got):\n%s", diff)
	}
}

func TestFSSource_IndexMissingDir(t *testing.T) {
	src := NewFSSource(fstest.MapFS{}, nil)

	got, err := src.Index(context.Background())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Index() = %v, want empty", got)
	}
}

func TestFSSource_Exercises(t *testing.T) {
	src := NewFSSource(testFS(), nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		module string
		want   []string
	}{
		{"chapter sorted by file", "01-intro", []string{"first", "second"}},
		{"chapter without definitions", "02-empty", []string{"defaultFunction"}},
		{"legacy flat file", "03-legacy", []string{"legacyFn"}},
		{"unknown module", "04-nothing", []string{"defaultFunction"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exs, err := src.Exercises(ctx, tt.module)
			if err != nil {
				t.Fatalf("Exercises() error = %v", err)
			}

			var names []string
			for _, ex := range exs {
				names = append(names, ex.Name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("Exercises() names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFSSource_ExercisesFromYAML(t *testing.T) {
	src := NewFSSource(testFS(), nil)

	exs, err := src.Exercises(context.Background(), "01-intro")
	if err != nil {
		t.Fatalf("Exercises() error = %v", err)
	}

	first := exs[0]
	if first.Description != "from yaml" {
		t.Errorf("Description = %q, want from yaml", first.Description)
	}
	if got := first.Template("javascript"); got != "function first() {}\n" {
		t.Errorf("Template(javascript) = %q", got)
	}
	if !exs[1].HasTest("javascript") {
		t.Error("second exercise lost its javascript test")
	}
}

func TestFSSource_ExercisesRejectsTraversal(t *testing.T) {
	src := NewFSSource(testFS(), nil)

	_, err := src.Exercises(context.Background(), "../secrets")
	if !errors.Is(err, domain.ErrInvalidModuleID) {
		t.Errorf("error = %v, want ErrInvalidModuleID", err)
	}
}

func TestFSSource_Metadata(t *testing.T) {
	src := NewFSSource(testFS(), nil)
	ctx := context.Background()

	intro, err := src.Metadata(ctx, "01-intro")
	if err != nil {
		t.Fatalf("Metadata(01-intro) error = %v", err)
	}
	if got := intro.ResourcesFor("javascript"); len(got) != 1 {
		t.Errorf("01-intro javascript resources = %v", got)
	}
	if got := intro.ResourcesFor("python"); len(got) != 0 {
		t.Errorf("01-intro python resources = %v, want none", got)
	}

	legacy, err := src.Metadata(ctx, "03-legacy")
	if err != nil {
		t.Fatalf("Metadata(03-legacy) error = %v", err)
	}
	if legacy.ChapterTitle != "Old School" {
		t.Errorf("ChapterTitle = %q, want Old School", legacy.ChapterTitle)
	}
	if got := legacy.ResourcesFor("python"); len(got) != 1 {
		t.Errorf("legacy python resources = %v", got)
	}
	if got := legacy.ResourcesFor("javascript"); len(got) != 1 || got[0] != "https://javascript.info" {
		t.Errorf("legacy javascript resources = %v", got)
	}

	missing, err := src.Metadata(ctx, "09-missing")
	if err != nil {
		t.Fatalf("Metadata(09-missing) error = %v", err)
	}
	if len(missing.ResourcesFor("javascript")) != 0 {
		t.Error("missing module has resources")
	}
}

func TestFSSource_LessonTemplate(t *testing.T) {
	src := NewFSSource(testFS(), nil)
	ctx := context.Background()

	tests := []struct {
		module string
		want   string
	}{
		{"01-intro", "chapter intro"},
		{"03-legacy", "markdown legacy"},
		{"02-empty", "base"},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			got, err := src.LessonTemplate(ctx, tt.module)
			if err != nil {
				t.Fatalf("LessonTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LessonTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFSSource_LessonTemplateMissing(t *testing.T) {
	src := NewFSSource(fstest.MapFS{}, nil)

	_, err := src.LessonTemplate(context.Background(), "01-intro")
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("error = %v, want ErrNoTemplate", err)
	}
}

func TestFSSource_HasDefinitions(t *testing.T) {
	src := NewFSSource(testFS(), nil)
	ctx := context.Background()

	if !src.HasDefinitions(ctx, "01-intro") {
		t.Error("HasDefinitions(01-intro) = false")
	}
	if src.HasDefinitions(ctx, "02-empty") {
		t.Error("HasDefinitions(02-empty) = true")
	}
}

func TestDefaultContent(t *testing.T) {
	src := NewFSSource(Default(), nil)
	ctx := context.Background()

	mods, err := Discover(ctx, src)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(mods) < 3 {
		t.Fatalf("Discover() returned %d modules, want at least 3", len(mods))
	}

	for _, m := range mods {
		exs, err := src.Exercises(ctx, m.ID)
		if err != nil {
			t.Fatalf("Exercises(%s) error = %v", m.ID, err)
		}
		for _, ex := range exs {
			if ex.Name == "defaultFunction" {
				t.Errorf("module %s has no real exercises", m.ID)
			}
			for _, lang := range []string{"javascript", "python"} {
				if !ex.HasTest(lang) {
					t.Errorf("%s/%s has no %s test", m.ID, ex.Name, lang)
				}
			}
		}

		tmpl, err := src.LessonTemplate(ctx, m.ID)
		if err != nil {
			t.Fatalf("LessonTemplate(%s) error = %v", m.ID, err)
		}
		if !strings.Contains(tmpl, "{{functionList}}") {
			t.Errorf("template for %s lacks the function list", m.ID)
		}
	}
}
