// Package harness assembles the self-contained test runner scripts that
// execute a module's tests. The same scripts are written into generated
// modules as tests.js and tests.py.
package harness

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

// Mode selects the JavaScript test framework
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeMocha   Mode = "mocha"
	ModeBuiltin Mode = "builtin"
)

// IsValid reports whether m is a known mode
func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeMocha, ModeBuiltin:
		return true
	}
	return false
}

// Names as printed on the first line of harness output
const (
	NameMocha    = "mocha"
	NameBuiltin  = "builtin"
	NameUnittest = "unittest"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("harness").Funcs(template.FuncMap{
	"json":    toJSON,
	"pyquote": toJSON,
}).ParseFS(templateFS, "templates/*.tmpl"))

// JavaScriptOptions configures a JavaScript runner script
type JavaScriptOptions struct {
	ModuleID string
	Files    []string // test files relative to the script's directory
	Mode     Mode
}

// JavaScript renders a node script that runs Files with mocha or the
// built-in describe/it harness and exits non-zero on any failure or when no
// test ran.
func JavaScript(opts JavaScriptOptions) ([]byte, error) {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("unknown harness mode %q", opts.Mode)
	}
	if opts.Files == nil {
		opts.Files = []string{}
	}
	return render("javascript.js.tmpl", opts)
}

// PythonOptions configures a Python runner script
type PythonOptions struct {
	ModuleID string
	StartDir string // discovery root relative to the script's directory
	Pattern  string
}

// Python renders a unittest discovery script
func Python(opts PythonOptions) ([]byte, error) {
	if opts.StartDir == "" {
		opts.StartDir = "."
	}
	if opts.Pattern == "" {
		opts.Pattern = "test*.py"
	}
	return render("python.py.tmpl", opts)
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// toJSON renders v as a JSON literal, which is also a valid JavaScript
// and Python literal for strings and string lists.
func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
