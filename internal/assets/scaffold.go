package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// newModuleIDPattern is stricter than domain.ValidateModuleID so new
// chapters sort by their two-digit prefix
var newModuleIDPattern = regexp.MustCompile(`^\d{2}-[a-z-]+$`)

// ModuleScaffold describes a chapter bundle to add to an asset tree
type ModuleScaffold struct {
	ID        string
	Title     string
	Resources map[string][]string
}

// DefaultResources are linked from a new chapter when none are given
var DefaultResources = map[string][]string{
	"javascript": {"https://developer.mozilla.org/en-US/docs/Web/JavaScript/Guide"},
	"python":     {"https://docs.python.org/3/tutorial/"},
}

// placeholderDefinition is the exercise a new chapter starts with
var placeholderDefinition = ExerciseFile{
	Name:        "exampleFunction",
	Description: "A placeholder function that needs to be implemented",
	JSTemplate:  "function exampleFunction() {\n  // TODO: Implement this function\n\n}",
	JSTest:      "  it(\"should be implemented\", () => {\n    assert.fail(\"Not implemented yet\");\n  });",
	PyTemplate:  "def example_function():\n    # TODO: Implement this function\n    pass\n",
	PyTest:      "def test_example_function(self):\n    self.fail(\"Function not implemented yet\")\n",
}

// ScaffoldModule adds a chapter bundle to the asset tree rooted at dir: the
// chapter-info.json header, one placeholder exercise definition, a metadata
// file and the lesson template. The lesson starts from the tree's base
// template, or the built-in one. It returns the written paths and refuses
// ids the tree already defines with domain.ErrModuleExists.
func ScaffoldModule(ctx context.Context, dir string, sc ModuleScaffold, logger *slog.Logger) ([]string, error) {
	if !newModuleIDPattern.MatchString(sc.ID) {
		return nil, fmt.Errorf("%w: %q must look like 06-arrays", domain.ErrInvalidModuleID, sc.ID)
	}
	title := strings.TrimSpace(sc.Title)
	if title == "" {
		return nil, errors.New("module title is required")
	}
	resources := sc.Resources
	if len(resources) == 0 {
		resources = DefaultResources
	}

	src := NewFSSource(os.DirFS(dir), logger)
	if src.HasDefinitions(ctx, sc.ID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrModuleExists, sc.ID)
	}
	index, err := src.Index(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range index {
		if m.ID == sc.ID {
			return nil, fmt.Errorf("%w: %s", domain.ErrModuleExists, sc.ID)
		}
	}

	lesson, err := baseLesson(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	lesson = strings.NewReplacer("{{moduleId}}", sc.ID, "{{moduleTitle}}", title).Replace(lesson)

	def := struct {
		ExerciseFile
		ChapterID string `json:"chapterId"`
	}{ExerciseFile: placeholderDefinition, ChapterID: sc.ID}

	outputs := []struct {
		name string
		v    any
	}{
		{path.Join(exercisesDir, sc.ID, chapterInfoFile), ChapterInfo{ID: sc.ID, Title: title, Resources: resources}},
		{path.Join(exercisesDir, sc.ID, sc.ID+"-"+placeholderDefinition.Name+".json"), def},
		{path.Join(metadataDir, sc.ID+".json"), MetadataFile{Resources: resources}},
		{path.Join(chaptersDir, sc.ID+".md"), lesson},
	}

	var written []string
	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		data, err := encode(out.v)
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", out.name, err)
		}
		target := filepath.Join(dir, filepath.FromSlash(out.name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return written, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", out.name, err)
		}
		written = append(written, target)
	}
	return written, nil
}

// baseLesson reads the base template of fsys, then of the built-in content
func baseLesson(fsys fs.FS) (string, error) {
	for _, tree := range []fs.FS{fsys, Default()} {
		for _, dir := range []string{chaptersDir, markdownDir} {
			data, err := fs.ReadFile(tree, path.Join(dir, baseTemplate+".md"))
			if err == nil {
				return string(data), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("read base template: %w", err)
			}
		}
	}
	return "", fmt.Errorf("%w: base template", ErrNoTemplate)
}

func encode(v any) ([]byte, error) {
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
