package domain

// Exercise is one function-level coding task within a module.
// Template and test code are kept per language, keyed by language id.
type Exercise struct {
	Name            string
	Description     string
	Hint            string
	Templates       map[string]string // language -> starter code
	Tests           map[string]string // language -> test code
	AdditionalFiles []AdditionalFile
}

// AdditionalFile is an auxiliary file scaffolded next to an exercise
type AdditionalFile struct {
	FileName     string
	Description  string
	Template     string
	Dependencies []string
}

// Template returns the starter code for language
func (e *Exercise) Template(language string) string {
	return e.Templates[language]
}

// Test returns the test code for language
func (e *Exercise) Test(language string) string {
	return e.Tests[language]
}

// HasTest reports whether the exercise carries test code for language
func (e *Exercise) HasTest(language string) bool {
	return e.Tests[language] != ""
}

// ModuleMetadata is optional per-module data from the asset source
type ModuleMetadata struct {
	ID           string
	Title        string
	ChapterTitle string
	Resources    map[string][]string // language -> links
}

// ResourcesFor returns the resource links for language; empty when absent
func (m *ModuleMetadata) ResourcesFor(language string) []string {
	if m == nil {
		return nil
	}
	return m.Resources[language]
}

// PlaceholderExercise is substituted when the asset source has no exercises
// for a module, so a generated module never ends up empty.
func PlaceholderExercise() Exercise {
	return Exercise{
		Name:        "defaultFunction",
		Description: "Placeholder",
		Templates: map[string]string{
			"javascript": "function defaultFunction() {\n  // TODO\n}",
			"python":     "def default_function():\n    # TODO\n    pass\n",
		},
		Tests: map[string]string{
			"javascript": "it(\"should implement defaultFunction\", () => { assert.fail(\"Not implemented\"); });",
			"python":     "def test_default_function(self):\n    self.fail(\"Not implemented\")\n",
		},
	}
}
