package harness

import (
	"strings"
	"testing"
)

func TestJavaScript(t *testing.T) {
	script, err := JavaScript(JavaScriptOptions{
		ModuleID: "01-intro",
		Files:    []string{"tests/greet.test.js", "tests/add.test.js"},
	})
	if err != nil {
		t.Fatalf("JavaScript() error = %v", err)
	}

	src := string(script)
	for _, want := range []string{
		"// Test runner for module 01-intro",
		`const files = ["tests/greet.test.js","tests/add.test.js"];`,
		"process.env.COURSEFORGE_HARNESS || 'auto'",
		"Total: ",
		"new Function('describe', 'it', 'require'",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestJavaScript_Modes(t *testing.T) {
	tests := []struct {
		mode    Mode
		wantErr bool
	}{
		{ModeAuto, false},
		{ModeMocha, false},
		{ModeBuiltin, false},
		{"jest", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			script, err := JavaScript(JavaScriptOptions{ModuleID: "m", Mode: tt.mode})
			if (err != nil) != tt.wantErr {
				t.Fatalf("JavaScript() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !strings.Contains(string(script), "|| '"+string(tt.mode)+"'") {
				t.Errorf("script does not default to mode %s", tt.mode)
			}
		})
	}
}

func TestJavaScript_NoFiles(t *testing.T) {
	script, err := JavaScript(JavaScriptOptions{ModuleID: "m"})
	if err != nil {
		t.Fatalf("JavaScript() error = %v", err)
	}
	if !strings.Contains(string(script), "const files = [];") {
		t.Error("empty file list not rendered as []")
	}
}

func TestPython(t *testing.T) {
	script, err := Python(PythonOptions{ModuleID: "02-variables", StartDir: "tests"})
	if err != nil {
		t.Fatalf("Python() error = %v", err)
	}

	src := string(script)
	for _, want := range []string{
		`os.path.join(HERE, "tests")`,
		`pattern="test*.py"`,
		"result.testsRun > 0",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("script missing %q", want)
		}
	}
}
