package domain

import (
	"testing"
)

func TestPlaceholderExercise(t *testing.T) {
	ex := PlaceholderExercise()

	if ex.Name != "defaultFunction" {
		t.Errorf("Name = %q, want defaultFunction", ex.Name)
	}

	for _, lang := range []string{"javascript", "python"} {
		if ex.Template(lang) == "" {
			t.Errorf("Template(%q) is empty", lang)
		}
		if !ex.HasTest(lang) {
			t.Errorf("HasTest(%q) = false, want true", lang)
		}
	}

	if ex.HasTest("rust") {
		t.Error("HasTest(rust) = true, want false")
	}
}

func TestModuleMetadata_ResourcesFor(t *testing.T) {
	var nilMeta *ModuleMetadata
	if got := nilMeta.ResourcesFor("javascript"); got != nil {
		t.Errorf("nil metadata ResourcesFor = %v, want nil", got)
	}

	meta := &ModuleMetadata{
		Resources: map[string][]string{
			"javascript": {"https://developer.mozilla.org/en-US/docs/Web/JavaScript"},
		},
	}
	if got := meta.ResourcesFor("javascript"); len(got) != 1 {
		t.Errorf("ResourcesFor(javascript) len = %d, want 1", len(got))
	}
	if got := meta.ResourcesFor("python"); len(got) != 0 {
		t.Errorf("ResourcesFor(python) len = %d, want 0", len(got))
	}
}

func TestTestReport_PassRate(t *testing.T) {
	tests := []struct {
		name   string
		report TestReport
		want   float64
	}{
		{"unknown counts", TestReport{Total: 4, Succeeded: 4}, 0},
		{"zero total", TestReport{CountsKnown: true}, 0},
		{"half", TestReport{CountsKnown: true, Total: 4, Succeeded: 2}, 0.5},
		{"all", TestReport{CountsKnown: true, Total: 3, Succeeded: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.PassRate(); got != tt.want {
				t.Errorf("PassRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTestRun(t *testing.T) {
	report := &TestReport{Passed: true, Layout: "multi-file", Total: 3, Succeeded: 3}
	run := NewTestRun("Programming Course - Javascript", "01-intro", report, true)

	if run.ModuleID != "01-intro" {
		t.Errorf("ModuleID = %q, want 01-intro", run.ModuleID)
	}
	if !run.Passed || !run.Advanced {
		t.Errorf("Passed = %v, Advanced = %v; want both true", run.Passed, run.Advanced)
	}
	if run.Layout != "multi-file" {
		t.Errorf("Layout = %q, want multi-file", run.Layout)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}
