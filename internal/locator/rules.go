package locator

import (
	"github.com/felixgeelhaar/courseforge/internal/assets"
)

// DirState is what was observed about one candidate module directory
type DirState struct {
	Dir          string
	TestFile     string // tests.<ext>, empty when absent
	HasExercises bool
	HasTests     bool
}

func (d DirState) multiFile() bool {
	return d.HasExercises && d.HasTests
}

// Snapshot holds every fact the classification rules look at
type Snapshot struct {
	ModuleID string
	Language string

	// Found are directories the workspace finder reported, in order
	Found []DirState
	// Candidates are the conventional directories next to the manifest
	Candidates []DirState
	// Definitions are raw exercise definitions from the asset source
	Definitions []assets.ExerciseFile
	SolutionDir string
}

// Rule inspects a snapshot and reports a structure when it applies
type Rule func(s *Snapshot) (Structure, bool)

// Rules are applied in order; the first match wins
var Rules = []Rule{
	fromFinder,
	fromCandidates,
	fromDefinitions,
}

// Classify applies Rules to s and reports NotFound when none match
func Classify(s *Snapshot) Structure {
	for _, rule := range Rules {
		if st, ok := rule(s); ok {
			return st
		}
	}
	return Structure{Kind: NotFound, ModuleID: s.ModuleID, Language: s.Language}
}

// fromFinder accepts any directory holding a master test file. A directory
// with both exercises/ and tests/ is multi-file even though tests.<ext>
// exists.
func fromFinder(s *Snapshot) (Structure, bool) {
	for _, d := range s.Found {
		if d.TestFile == "" {
			continue
		}
		return dirStructure(s, d), true
	}
	return Structure{}, false
}

// fromCandidates also accepts a multi-file directory without a master file
func fromCandidates(s *Snapshot) (Structure, bool) {
	for _, d := range s.Candidates {
		if d.TestFile == "" && !d.multiFile() {
			continue
		}
		return dirStructure(s, d), true
	}
	return Structure{}, false
}

func fromDefinitions(s *Snapshot) (Structure, bool) {
	if len(s.Definitions) == 0 {
		return Structure{}, false
	}
	return Structure{
		Kind:        SplitDefinitions,
		ModuleID:    s.ModuleID,
		Language:    s.Language,
		Definitions: s.Definitions,
		SolutionDir: s.SolutionDir,
	}, true
}

func dirStructure(s *Snapshot, d DirState) Structure {
	kind := SingleFile
	if d.multiFile() {
		kind = MultiFile
	}
	return Structure{
		Kind:      kind,
		ModuleID:  s.ModuleID,
		Language:  s.Language,
		ModuleDir: d.Dir,
		TestFile:  d.TestFile,
	}
}
