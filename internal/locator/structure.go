package locator

import (
	"github.com/felixgeelhaar/courseforge/internal/assets"
)

// Kind classifies how a module's tests are laid out on disk
type Kind int

const (
	NotFound Kind = iota
	// SingleFile is one combined test file next to the learner's code
	SingleFile
	// MultiFile is the generated layout: exercises/ and tests/ directories
	// with one test file per exercise
	MultiFile
	// SplitDefinitions means only raw exercise definitions exist
	SplitDefinitions
)

func (k Kind) String() string {
	switch k {
	case SingleFile:
		return "single-file"
	case MultiFile:
		return "multi-file"
	case SplitDefinitions:
		return "split-definitions"
	default:
		return "not-found"
	}
}

// Structure is the located test layout of a module
type Structure struct {
	Kind     Kind
	ModuleID string
	Language string

	// ModuleDir is the module directory for SingleFile and MultiFile
	ModuleDir string
	// TestFile is the combined test file (SingleFile) or the master runner
	// (MultiFile, may be empty when the module has none)
	TestFile string

	// Definitions are the raw exercises of a SplitDefinitions module
	Definitions []assets.ExerciseFile
	// SolutionDir is where learner solutions for split definitions live
	SolutionDir string
}

// Found reports whether tests were located
func (s Structure) Found() bool {
	return s.Kind != NotFound
}
