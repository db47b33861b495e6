package generator

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/harness"
)

// Supported course languages
const (
	LanguageJavaScript = "javascript"
	LanguagePython     = "python"
)

// File is one generated file, path relative to the module directory
type File struct {
	Path    string
	Content []byte
}

// Profile knows the on-disk layout of a module for one language
type Profile interface {
	Language() string
	Extension() string
	// Files returns every generated file of a module except the lesson
	Files(module domain.ModuleInfo, exercises []domain.Exercise) ([]File, error)
}

// ProfileFor returns the layout profile for a language
func ProfileFor(language string) (Profile, error) {
	switch language {
	case LanguageJavaScript:
		return javascriptProfile{}, nil
	case LanguagePython:
		return pythonProfile{}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, language)
}

// Languages lists the supported course languages
func Languages() []string {
	return []string{LanguageJavaScript, LanguagePython}
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("generator").Funcs(template.FuncMap{
	"comment":   jsComment,
	"docstring": pyDocstring,
	"quote":     jsQuote,
}).ParseFS(templateFS, "templates/*.tmpl"))

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func jsComment(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(" * "+line, " ")
	}
	return strings.Join(lines, "\n")
}

func pyDocstring(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(strings.TrimSpace(s), `"""`, `\"\"\"`)
}

func jsQuote(s string) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// entry is the per-exercise view handed to the code templates
type entry struct {
	ModuleID    string
	Name        string
	Description string
	Ident       string
	Safe        string
	Snake       string
	Class       string
	Template    string
	Body        string
	Imports     []importRef
}

type importRef struct {
	Ident string
	Safe  string
}

// entries resolves names for every exercise. Colliding safe names get a
// numeric suffix so no exercise overwrites another.
func entries(moduleID string, exercises []domain.Exercise) []entry {
	used := make(map[string]int)
	out := make([]entry, 0, len(exercises))

	for _, ex := range exercises {
		safe := SafeName(ex.Name)
		used[safe]++
		if n := used[safe]; n > 1 {
			safe = fmt.Sprintf("%s-%d", safe, n)
		}

		out = append(out, entry{
			ModuleID:    moduleID,
			Name:        ex.Name,
			Description: ex.Description,
			Ident:       Identifier(ex.Name),
			Safe:        safe,
			Snake:       snake(safe),
			Class:       ClassName(safe),
		})
	}
	return out
}

type indexData struct {
	ModuleID    string
	ModuleTitle string
	Exercises   []entry
}

type javascriptProfile struct{}

func (javascriptProfile) Language() string  { return LanguageJavaScript }
func (javascriptProfile) Extension() string { return "js" }

func (javascriptProfile) Files(module domain.ModuleInfo, exercises []domain.Exercise) ([]File, error) {
	ents := entries(module.ID, exercises)
	var files []File
	var testFiles []string

	for i, ex := range exercises {
		e := ents[i]

		e.Template = strings.TrimRight(ex.Template(LanguageJavaScript), "\n")
		if e.Template == "" {
			e.Template = fmt.Sprintf("function %s() {\n  // Your code here\n}", e.Ident)
		}
		for _, af := range ex.AdditionalFiles {
			e.Imports = append(e.Imports, importRef{Ident: Identifier(af.FileName), Safe: SafeName(af.FileName)})
		}

		dir := path.Join("exercises", e.Safe)
		main, err := render("js_exercise.tmpl", e)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path.Join(dir, "index.js"), Content: main})

		for _, af := range ex.AdditionalFiles {
			extra, err := renderAdditional(ex.Name, af)
			if err != nil {
				return nil, err
			}
			files = append(files, File{Path: path.Join(dir, SafeName(af.FileName)+".js"), Content: extra})
		}

		e.Body = reindent(ex.Test(LanguageJavaScript), "  ")
		test, err := render("js_test.tmpl", e)
		if err != nil {
			return nil, err
		}
		testPath := path.Join("tests", e.Safe+".test.js")
		files = append(files, File{Path: testPath, Content: test})
		testFiles = append(testFiles, testPath)
	}

	index, err := render("js_index.tmpl", indexData{ModuleID: module.ID, ModuleTitle: module.Title, Exercises: ents})
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "index.js", Content: index})

	runner, err := harness.JavaScript(harness.JavaScriptOptions{ModuleID: module.ID, Files: testFiles})
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "tests.js", Content: runner})

	return files, nil
}

func renderAdditional(exercise string, af domain.AdditionalFile) ([]byte, error) {
	data := struct {
		Exercise    string
		Description string
		Safe        string
		Ident       string
		Template    string
		Imports     []importRef
	}{
		Exercise:    exercise,
		Description: af.Description,
		Safe:        SafeName(af.FileName),
		Ident:       Identifier(af.FileName),
		Template:    strings.TrimRight(af.Template, "\n"),
	}
	for _, dep := range af.Dependencies {
		data.Imports = append(data.Imports, importRef{Ident: Identifier(dep), Safe: SafeName(dep)})
	}
	return render("js_additional.tmpl", data)
}

type pythonProfile struct{}

func (pythonProfile) Language() string  { return LanguagePython }
func (pythonProfile) Extension() string { return "py" }

func (pythonProfile) Files(module domain.ModuleInfo, exercises []domain.Exercise) ([]File, error) {
	ents := entries(module.ID, exercises)
	files := []File{
		{Path: "exercises/__init__.py", Content: []byte{}},
		{Path: "tests/__init__.py", Content: []byte{}},
	}

	for i, ex := range exercises {
		e := ents[i]

		e.Template = strings.TrimRight(ex.Template(LanguagePython), "\n")
		if e.Template == "" {
			e.Template = fmt.Sprintf("def %s():\n    # Your code here\n    pass", e.Snake)
		}
		main, err := render("py_exercise.tmpl", e)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path.Join("exercises", e.Snake+".py"), Content: main})

		e.Body = reindent(ex.Test(LanguagePython), "    ")
		if e.Body == "" {
			e.Body = "    pass"
		}
		test, err := render("py_test.tmpl", e)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path.Join("tests", "test_"+e.Snake+".py"), Content: test})
	}

	index, err := render("py_index.tmpl", indexData{ModuleID: module.ID, ModuleTitle: module.Title, Exercises: ents})
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "index.py", Content: index})

	runner, err := harness.Python(harness.PythonOptions{ModuleID: module.ID, StartDir: "tests", Pattern: "test_*.py"})
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "tests.py", Content: runner})

	return files, nil
}
