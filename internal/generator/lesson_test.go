package generator

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestRenderLesson(t *testing.T) {
	tmpl := "# {{moduleTitle}} ({{moduleId}})\nLearn {{moduleTitle.toLowerCase()}} in .{{extension}}\n{{functionList}}{{resourceLinks}}"
	data := LessonData{
		ModuleID:    "02-variables",
		ModuleTitle: "Variables",
		Extension:   "js",
		Exercises: []domain.Exercise{
			{Name: "swapPair", Description: "Swap two values."},
		},
		Resources: []string{
			"https://developer.mozilla.org/en-US/docs/Web/JavaScript",
			"https://javascript.info",
		},
	}

	want := "# Variables (02-variables)\n" +
		"Learn variables in .js\n" +
		"   - `swapPair`: Swap two values.\n" +
		"- [developer.mozilla.org](https://developer.mozilla.org/en-US/docs/Web/JavaScript)\n" +
		"- [javascript.info](https://javascript.info)\n"

	if diff := cmp.Diff(want, RenderLesson(tmpl, data)); diff != "" {
		t.Errorf("RenderLesson() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderLesson_Fallback(t *testing.T) {
	got := RenderLesson("  \n", LessonData{
		ModuleID:    "01-intro",
		ModuleTitle: "Introduction",
		Extension:   "py",
		Exercises:   []domain.Exercise{domain.PlaceholderExercise()},
	})

	for _, want := range []string{
		"# Module 01-intro: Introduction",
		"## Instructions",
		".py files",
		"`defaultFunction`",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback lesson missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Resources") {
		t.Error("fallback lesson renders an empty resources section")
	}
}

func TestResourceLinks_UnparsableURL(t *testing.T) {
	got := ResourceLinks([]string{"not a url"})
	if got != "- [not a url](not a url)\n" {
		t.Errorf("ResourceLinks() = %q", got)
	}
}
