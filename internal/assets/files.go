package assets

import (
	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// ChapterInfo is the chapter-info.json header of a chapter bundle
type ChapterInfo struct {
	ID        string              `json:"id" yaml:"id"`
	Title     string              `json:"title" yaml:"title"`
	Resources map[string][]string `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// LegacyModuleFile is the flat exercises/<id>.json definition that predates chapters
type LegacyModuleFile struct {
	ID        string              `json:"id" yaml:"id"`
	Title     string              `json:"title" yaml:"title"`
	Resources map[string][]string `json:"resources,omitempty" yaml:"resources,omitempty"`
	Exercises []ExerciseFile      `json:"exercises" yaml:"exercises"`
}

// ExerciseFile is one exercise definition as stored in the asset tree
type ExerciseFile struct {
	Name            string               `json:"name" yaml:"name"`
	Description     string               `json:"description" yaml:"description"`
	Hint            string               `json:"hint,omitempty" yaml:"hint,omitempty"`
	JSTemplate      string               `json:"jsTemplate,omitempty" yaml:"jsTemplate,omitempty"`
	JSTest          string               `json:"jsTest,omitempty" yaml:"jsTest,omitempty"`
	PyTemplate      string               `json:"pyTemplate,omitempty" yaml:"pyTemplate,omitempty"`
	PyTest          string               `json:"pyTest,omitempty" yaml:"pyTest,omitempty"`
	AdditionalFiles []AdditionalFileSpec `json:"additionalFiles,omitempty" yaml:"additionalFiles,omitempty"`
}

// AdditionalFileSpec declares an auxiliary file for an exercise
type AdditionalFileSpec struct {
	FileName     string   `json:"fileName" yaml:"fileName"`
	Description  string   `json:"description" yaml:"description"`
	Template     string   `json:"template,omitempty" yaml:"template,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// MetadataFile is templates/metadata/<id>.json
type MetadataFile struct {
	ID           string              `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string              `json:"title,omitempty" yaml:"title,omitempty"`
	ChapterTitle string              `json:"chapterTitle,omitempty" yaml:"chapterTitle,omitempty"`
	Resources    map[string][]string `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// ToDomain converts the stored definition to a domain exercise
func (f *ExerciseFile) ToDomain() domain.Exercise {
	ex := domain.Exercise{
		Name:        f.Name,
		Description: f.Description,
		Hint:        f.Hint,
		Templates:   make(map[string]string),
		Tests:       make(map[string]string),
	}

	if f.JSTemplate != "" {
		ex.Templates["javascript"] = f.JSTemplate
	}
	if f.JSTest != "" {
		ex.Tests["javascript"] = f.JSTest
	}
	if f.PyTemplate != "" {
		ex.Templates["python"] = f.PyTemplate
	}
	if f.PyTest != "" {
		ex.Tests["python"] = f.PyTest
	}

	for _, af := range f.AdditionalFiles {
		ex.AdditionalFiles = append(ex.AdditionalFiles, domain.AdditionalFile{
			FileName:     af.FileName,
			Description:  af.Description,
			Template:     af.Template,
			Dependencies: af.Dependencies,
		})
	}

	return ex
}
