package generator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// LessonData fills the placeholders of a lesson template
type LessonData struct {
	ModuleID    string
	ModuleTitle string
	Extension   string
	Exercises   []domain.Exercise
	Resources   []string
}

// RenderLesson substitutes the lesson placeholders in tmpl. An empty
// template yields the built-in lesson document.
func RenderLesson(tmpl string, d LessonData) string {
	if strings.TrimSpace(tmpl) == "" {
		return fallbackLesson(d)
	}

	r := strings.NewReplacer(
		"{{moduleTitle.toLowerCase()}}", strings.ToLower(d.ModuleTitle),
		"{{moduleId}}", d.ModuleID,
		"{{moduleTitle}}", d.ModuleTitle,
		"{{extension}}", d.Extension,
		"{{functionList}}", FunctionList(d.Exercises),
		"{{resourceLinks}}", ResourceLinks(d.Resources),
	)
	return r.Replace(tmpl)
}

// FunctionList renders one bullet per exercise
func FunctionList(exercises []domain.Exercise) string {
	var b strings.Builder
	for _, ex := range exercises {
		fmt.Fprintf(&b, "   - `%s`: %s\n", ex.Name, ex.Description)
	}
	return b.String()
}

// ResourceLinks renders links as markdown bullets labelled with their host
func ResourceLinks(links []string) string {
	var b strings.Builder
	for _, link := range links {
		fmt.Fprintf(&b, "- [%s](%s)\n", linkText(link), link)
	}
	return b.String()
}

func linkText(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return u.Host
}

func fallbackLesson(d LessonData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Module %s: %s\n\n", d.ModuleID, d.ModuleTitle)
	b.WriteString("## Instructions\n\n")
	fmt.Fprintf(&b, "1. Open the .%s files under exercises/\n", d.Extension)
	b.WriteString("2. Implement the required functions\n")
	b.WriteString("3. Run the tests to validate your solution\n")

	if len(d.Exercises) > 0 {
		b.WriteString("\n## Exercises\n\n")
		b.WriteString(FunctionList(d.Exercises))
	}
	if len(d.Resources) > 0 {
		b.WriteString("\n## Resources\n\n")
		b.WriteString(ResourceLinks(d.Resources))
	}
	return b.String()
}
