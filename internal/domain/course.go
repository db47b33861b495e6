package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ManifestFileName is the name of the course manifest at the course root
const ManifestFileName = "course.json"

// ManifestVersion is written to newly created manifests
const ManifestVersion = "1"

// ModuleStatus is the progression state of a module
type ModuleStatus string

const (
	ModuleLocked    ModuleStatus = "locked"
	ModuleActive    ModuleStatus = "active"
	ModuleCompleted ModuleStatus = "completed"
)

// IsValid checks if the status is one of the known states
func (s ModuleStatus) IsValid() bool {
	switch s {
	case ModuleLocked, ModuleActive, ModuleCompleted:
		return true
	default:
		return false
	}
}

// rank orders statuses so transitions can be checked for monotonicity
func (s ModuleStatus) rank() int {
	switch s {
	case ModuleLocked:
		return 0
	case ModuleActive:
		return 1
	case ModuleCompleted:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next keeps progression monotonic
func (s ModuleStatus) CanTransitionTo(next ModuleStatus) bool {
	return next.rank() >= s.rank() && next.rank() >= 0
}

// ModuleInfo is one entry of the ordered module list
type ModuleInfo struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Status ModuleStatus `json:"status"`

	// Extra keeps keys this version does not know about
	Extra map[string]json.RawMessage `json:"-"`
}

// CourseManifest is the persisted course record (course.json)
type CourseManifest struct {
	Name          string       `json:"name"`
	Language      string       `json:"language"`
	Modules       []ModuleInfo `json:"modules"`
	CurrentModule string       `json:"currentModule"`
	Version       string       `json:"version,omitempty"`

	// CourseCompleted marks the terminal state: every module is completed
	// and CurrentModule still names the last one.
	CourseCompleted bool `json:"courseCompleted,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var moduleIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateModuleID rejects ids that are not safe to use as a directory name
func ValidateModuleID(id string) error {
	if id == "" || id == "." || id == ".." || !moduleIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidModuleID, id)
	}
	return nil
}

// NewCourseManifest builds the initial manifest for a discovered module list.
// The first module becomes active; every other module starts locked.
func NewCourseManifest(language string, modules []ModuleInfo) (*CourseManifest, error) {
	if len(modules) == 0 {
		return nil, ErrNoCourseContent
	}

	list := make([]ModuleInfo, len(modules))
	for i, m := range modules {
		if err := ValidateModuleID(m.ID); err != nil {
			return nil, err
		}
		list[i] = ModuleInfo{ID: m.ID, Title: m.Title, Status: ModuleLocked}
	}
	list[0].Status = ModuleActive

	return &CourseManifest{
		Name:          CourseName(language),
		Language:      language,
		Modules:       list,
		CurrentModule: list[0].ID,
		Version:       ManifestVersion,
	}, nil
}

// CourseName derives the display name from the course language
func CourseName(language string) string {
	if language == "" {
		return "Programming Course"
	}
	return "Programming Course - " + capitalize(language)
}

// CourseFolderName is the directory a course for language is created in
func CourseFolderName(language string) string {
	return "programming-course-" + language
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// ModuleIndex returns the position of the module with id, or -1
func (m *CourseManifest) ModuleIndex(id string) int {
	for i := range m.Modules {
		if m.Modules[i].ID == id {
			return i
		}
	}
	return -1
}

// Module returns the module with id
func (m *CourseManifest) Module(id string) (*ModuleInfo, bool) {
	i := m.ModuleIndex(id)
	if i < 0 {
		return nil, false
	}
	return &m.Modules[i], true
}

// IsFirstModule reports whether id names the first module in the ordered list
func (m *CourseManifest) IsFirstModule(id string) bool {
	return len(m.Modules) > 0 && m.Modules[0].ID == id
}

// IsTestable applies the lock guard: locked modules are refused unless they
// are the first module, which is always testable.
func (m *CourseManifest) IsTestable(id string) bool {
	mod, ok := m.Module(id)
	if !ok {
		return false
	}
	return mod.Status != ModuleLocked || m.IsFirstModule(id)
}

// ActiveModules returns the ids of every module currently marked active
func (m *CourseManifest) ActiveModules() []string {
	var ids []string
	for _, mod := range m.Modules {
		if mod.Status == ModuleActive {
			ids = append(ids, mod.ID)
		}
	}
	return ids
}

// CompletedCount returns the number of completed modules
func (m *CourseManifest) CompletedCount() int {
	n := 0
	for _, mod := range m.Modules {
		if mod.Status == ModuleCompleted {
			n++
		}
	}
	return n
}

// ValidateStructure checks what every reader relies on: the module list is
// not empty, ids are safe and unique, and every status is known. A manifest
// that passes can be read and guarded even when its progression is
// inconsistent.
func (m *CourseManifest) ValidateStructure() error {
	if len(m.Modules) == 0 {
		return fmt.Errorf("%w: manifest has no modules", ErrInvalidManifest)
	}

	seen := make(map[string]bool, len(m.Modules))
	for _, mod := range m.Modules {
		if err := ValidateModuleID(mod.ID); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		if seen[mod.ID] {
			return fmt.Errorf("%w: duplicate module %q", ErrInvalidManifest, mod.ID)
		}
		seen[mod.ID] = true
		if !mod.Status.IsValid() {
			return fmt.Errorf("%w: module %q has status %q", ErrInvalidManifest, mod.ID, mod.Status)
		}
	}
	return nil
}

// Validate checks the structure and the progression invariants: at most one
// module is active and it is the current module, completed modules form a
// prefix of the list, and a completed course has no active module.
func (m *CourseManifest) Validate() error {
	if err := m.ValidateStructure(); err != nil {
		return err
	}

	if m.ModuleIndex(m.CurrentModule) < 0 {
		return fmt.Errorf("%w: current module %q is not in the module list", ErrInvalidManifest, m.CurrentModule)
	}

	active := m.ActiveModules()
	switch {
	case len(active) > 1:
		return fmt.Errorf("%w: %d modules are active", ErrInvalidManifest, len(active))
	case len(active) == 1 && active[0] != m.CurrentModule:
		return fmt.Errorf("%w: active module %q is not the current module %q", ErrInvalidManifest, active[0], m.CurrentModule)
	case m.CourseCompleted && len(active) != 0:
		return fmt.Errorf("%w: completed course still has an active module", ErrInvalidManifest)
	}

	prefix := true
	for _, mod := range m.Modules {
		if mod.Status != ModuleCompleted {
			prefix = false
			continue
		}
		if !prefix {
			return fmt.Errorf("%w: module %q completed out of order", ErrInvalidManifest, mod.ID)
		}
	}

	return nil
}

// Clone returns a deep copy so callers can mutate without touching the original
func (m *CourseManifest) Clone() *CourseManifest {
	c := *m
	c.Modules = make([]ModuleInfo, len(m.Modules))
	for i, mod := range m.Modules {
		mod.Extra = cloneExtra(mod.Extra)
		c.Modules[i] = mod
	}
	c.Extra = cloneExtra(m.Extra)
	return &c
}

func cloneExtra(src map[string]json.RawMessage) map[string]json.RawMessage {
	if src == nil {
		return nil
	}
	dst := make(map[string]json.RawMessage, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
