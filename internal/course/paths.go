package course

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// modulePathPatterns extract a module id from a file or directory path; the
// first match wins
var modulePathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/(0\d-\w+(?:-\w+)*)/`),
	regexp.MustCompile(`/exercises/(0\d-\w+(?:-\w+)*)/`),
	regexp.MustCompile(`(0\d-\w+(?:-\w+)*)-\w+\.\w+$`),
	regexp.MustCompile(`/assets/exercises/(0\d-\w+(?:-\w+)*)/`),
}

// ModuleIDFromPath guesses the module a path belongs to, such as the
// directory the learner is working in. It returns false when no segment
// looks like a module id.
func ModuleIDFromPath(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	p := "/" + strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "/")
	if !strings.Contains(path.Base(p), ".") {
		p += "/"
	}

	for _, re := range modulePathPatterns {
		m := re.FindStringSubmatch(p)
		if m == nil {
			continue
		}
		if domain.ValidateModuleID(m[1]) != nil {
			return "", false
		}
		return m[1], true
	}
	return "", false
}

// ModuleForPath returns the module of the course that name belongs to. A
// guessed id the manifest does not list yields "", which callers treat as
// the current module.
func (s *Service) ModuleForPath(ctx context.Context, name string) string {
	id, ok := ModuleIDFromPath(name)
	if !ok {
		return ""
	}
	m, err := s.store.Load(ctx)
	if err != nil {
		return ""
	}
	if _, found := m.Module(id); !found {
		s.logger.Debug("ignoring module id from path", "path", name, "module", id)
		return ""
	}
	return id
}
