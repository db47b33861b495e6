package course

import "testing"

func TestModuleIDFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{path: "/ws/programming-course-javascript/01-intro/exercises/greet.js", want: "01-intro", wantOK: true},
		{path: "/ws/programming-course-python/02-variables", want: "02-variables", wantOK: true},
		{path: `C:\ws\course\03-control-flow\tests.py`, want: "03-control-flow", wantOK: true},
		{path: "/ws/assets/exercises/04-functions/04-functions-sum.json", want: "04-functions", wantOK: true},
		{path: "01-intro-greet.js", want: "01-intro", wantOK: true},
		{path: "/ws/notes/readme.md", wantOK: false},
		{path: "/ws/10-advanced/x.js", wantOK: false},
		{path: "", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := ModuleIDFromPath(tc.path)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ModuleIDFromPath(%q) = %q, %v; want %q, %v", tc.path, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
