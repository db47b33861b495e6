package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func threeModules() []ModuleInfo {
	return []ModuleInfo{
		{ID: "01-intro", Title: "Introduction"},
		{ID: "02-variables", Title: "Variables"},
		{ID: "03-loops", Title: "Loops"},
	}
}

func TestNewCourseManifest(t *testing.T) {
	m, err := NewCourseManifest("javascript", threeModules())
	if err != nil {
		t.Fatalf("NewCourseManifest() error = %v", err)
	}

	if m.Name != "Programming Course - Javascript" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.CurrentModule != "01-intro" {
		t.Errorf("CurrentModule = %q, want 01-intro", m.CurrentModule)
	}

	want := []ModuleStatus{ModuleActive, ModuleLocked, ModuleLocked}
	for i, mod := range m.Modules {
		if mod.Status != want[i] {
			t.Errorf("Modules[%d].Status = %q, want %q", i, mod.Status, want[i])
		}
	}

	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewCourseManifest_Empty(t *testing.T) {
	_, err := NewCourseManifest("javascript", nil)
	if !errors.Is(err, ErrNoCourseContent) {
		t.Errorf("error = %v, want ErrNoCourseContent", err)
	}
}

func TestNewCourseManifest_PreservesOrder(t *testing.T) {
	mods := []ModuleInfo{
		{ID: "02-variables"},
		{ID: "01-intro"},
	}
	m, err := NewCourseManifest("python", mods)
	if err != nil {
		t.Fatalf("NewCourseManifest() error = %v", err)
	}
	if m.Modules[0].ID != "02-variables" || m.Modules[1].ID != "01-intro" {
		t.Errorf("order changed: %v", m.Modules)
	}
}

func TestValidateModuleID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"01-intro", false},
		{"05-functions.v2", false},
		{"", true},
		{"..", true},
		{"../etc", true},
		{"a/b", true},
		{"-flag", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateModuleID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestModuleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ModuleStatus
		want     bool
	}{
		{ModuleLocked, ModuleActive, true},
		{ModuleActive, ModuleCompleted, true},
		{ModuleLocked, ModuleCompleted, true},
		{ModuleCompleted, ModuleActive, false},
		{ModuleActive, ModuleLocked, false},
		{ModuleActive, ModuleStatus("bogus"), false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCourseManifest_IsTestable(t *testing.T) {
	m, _ := NewCourseManifest("javascript", threeModules())
	m.Modules[0].Status = ModuleLocked // stale first module stays testable

	tests := []struct {
		id   string
		want bool
	}{
		{"01-intro", true},
		{"02-variables", false},
		{"03-loops", false},
		{"99-missing", false},
	}

	for _, tt := range tests {
		if got := m.IsTestable(tt.id); got != tt.want {
			t.Errorf("IsTestable(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCourseManifest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *CourseManifest)
		wantErr bool
	}{
		{"fresh", func(m *CourseManifest) {}, false},
		{"two active", func(m *CourseManifest) { m.Modules[1].Status = ModuleActive }, true},
		{"active not current", func(m *CourseManifest) { m.CurrentModule = "02-variables" }, true},
		{"unknown current", func(m *CourseManifest) { m.CurrentModule = "nope" }, true},
		{"bad status", func(m *CourseManifest) { m.Modules[2].Status = "done" }, true},
		{"completed gap", func(m *CourseManifest) { m.Modules[2].Status = ModuleCompleted }, true},
		{"terminal", func(m *CourseManifest) {
			for i := range m.Modules {
				m.Modules[i].Status = ModuleCompleted
			}
			m.CurrentModule = "03-loops"
			m.CourseCompleted = true
		}, false},
		{"terminal with active", func(m *CourseManifest) { m.CourseCompleted = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewCourseManifest("javascript", threeModules())
			tt.mutate(m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidManifest) && !errors.Is(err, ErrInvalidModuleID) {
				t.Errorf("Validate() error = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestCourseManifest_ValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *CourseManifest)
		wantErr bool
	}{
		{"fresh", func(m *CourseManifest) {}, false},
		{"stale current", func(m *CourseManifest) { m.CurrentModule = "00-removed" }, false},
		{"two active", func(m *CourseManifest) { m.Modules[1].Status = ModuleActive }, false},
		{"bad status", func(m *CourseManifest) { m.Modules[2].Status = "done" }, true},
		{"duplicate id", func(m *CourseManifest) { m.Modules[1].ID = m.Modules[0].ID }, true},
		{"unsafe id", func(m *CourseManifest) { m.Modules[1].ID = "../x" }, true},
		{"empty", func(m *CourseManifest) { m.Modules = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewCourseManifest("javascript", threeModules())
			tt.mutate(m)
			err := m.ValidateStructure()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStructure() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("ValidateStructure() error = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestCourseManifest_Clone(t *testing.T) {
	m, _ := NewCourseManifest("javascript", threeModules())
	m.Extra = map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)}

	c := m.Clone()
	c.Modules[0].Status = ModuleCompleted
	c.Extra["theme"] = json.RawMessage(`"light"`)

	if m.Modules[0].Status != ModuleActive {
		t.Error("mutating clone changed original module status")
	}
	if string(m.Extra["theme"]) != `"dark"` {
		t.Error("mutating clone changed original extra")
	}
}

func TestCourseManifest_JSONPreservesUnknownKeys(t *testing.T) {
	input := `{
  "name": "Programming Course - Javascript",
  "language": "javascript",
  "modules": [
    {
      "id": "01-intro",
      "title": "Introduction",
      "status": "active",
      "estimatedMinutes": 20
    }
  ],
  "currentModule": "01-intro",
  "version": "1",
  "author": {"name": "Ada"}
}`

	var m CourseManifest
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if string(m.Modules[0].Extra["estimatedMinutes"]) != "20" {
		t.Errorf("module extra = %s", m.Modules[0].Extra["estimatedMinutes"])
	}
	if _, ok := m.Extra["author"]; !ok {
		t.Error("manifest extra lost author key")
	}
	if _, ok := m.Extra["name"]; ok {
		t.Error("known key leaked into Extra")
	}

	first, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}

	var again CourseManifest
	if err := json.Unmarshal(first, &again); err != nil {
		t.Fatalf("Unmarshal(second) error = %v", err)
	}
	second, _ := json.MarshalIndent(again, "", "  ")

	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("serialization not stable (-first +second):\n%s", diff)
	}
}

func TestCourseManifest_JSONKeyOrder(t *testing.T) {
	m := CourseManifest{
		Name:          "n",
		Language:      "javascript",
		Modules:       []ModuleInfo{{ID: "01-intro", Title: "Intro", Status: ModuleActive}},
		CurrentModule: "01-intro",
		Extra: map[string]json.RawMessage{
			"zeta":  json.RawMessage(`1`),
			"alpha": json.RawMessage(`2`),
			"name":  json.RawMessage(`"ignored"`),
		},
	}

	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"name":"n","language":"javascript","modules":[{"id":"01-intro","title":"Intro","status":"active"}],"currentModule":"01-intro","alpha":2,"zeta":1}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
}
