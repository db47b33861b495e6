package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source provides module content: the module index, exercises, metadata
// and lesson templates.
type Source interface {
	Index(ctx context.Context) ([]domain.ModuleInfo, error)
	Exercises(ctx context.Context, moduleID string) ([]domain.Exercise, error)
	Metadata(ctx context.Context, moduleID string) (*domain.ModuleMetadata, error)
	LessonTemplate(ctx context.Context, moduleID string) (string, error)
}

const (
	exercisesDir    = "exercises"
	chaptersDir     = "templates/chapters"
	markdownDir     = "templates/markdown"
	metadataDir     = "templates/metadata"
	chapterInfoFile = "chapter-info.json"
	baseTemplate    = "base-template"
)

// ErrNoTemplate is returned when neither a module template nor the base template exists
var ErrNoTemplate = errors.New("no lesson template")

// FSSource reads course assets from an fs.FS
type FSSource struct {
	fsys   fs.FS
	logger *slog.Logger
}

// NewFSSource creates a source over fsys
func NewFSSource(fsys fs.FS, logger *slog.Logger) *FSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSSource{fsys: fsys, logger: logger}
}

// Index lists every module the asset tree defines. Chapter bundles win over
// legacy flat files with the same id. Directories without chapter-info.json
// (backups, scratch folders) are ignored.
func (s *FSSource) Index(ctx context.Context) ([]domain.ModuleInfo, error) {
	entries, err := fs.ReadDir(s.fsys, exercisesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read exercises dir: %w", err)
	}

	seen := make(map[string]bool)
	var modules []domain.ModuleInfo

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		info, err := s.chapterInfo(entry.Name())
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("skipping chapter", "dir", entry.Name(), "error", err)
			}
			continue
		}
		if err := domain.ValidateModuleID(info.ID); err != nil {
			s.logger.Warn("skipping chapter with invalid id", "dir", entry.Name(), "id", info.ID)
			continue
		}
		if seen[info.ID] {
			continue
		}
		seen[info.ID] = true
		modules = append(modules, domain.ModuleInfo{ID: info.ID, Title: info.Title})
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		legacy, err := s.legacyModule(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			s.logger.Warn("skipping legacy module file", "file", entry.Name(), "error", err)
			continue
		}
		if legacy.ID == "" || seen[legacy.ID] {
			continue
		}
		if err := domain.ValidateModuleID(legacy.ID); err != nil {
			s.logger.Warn("skipping legacy module with invalid id", "file", entry.Name(), "id", legacy.ID)
			continue
		}
		seen[legacy.ID] = true
		modules = append(modules, domain.ModuleInfo{ID: legacy.ID, Title: legacy.Title})
	}

	return modules, nil
}

// Exercises returns the exercises of a module. A module without any
// definitions gets the placeholder exercise so generated modules are never
// empty.
func (s *FSSource) Exercises(ctx context.Context, moduleID string) ([]domain.Exercise, error) {
	if err := domain.ValidateModuleID(moduleID); err != nil {
		return nil, err
	}

	files, err := s.ExerciseFiles(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	exercises := make([]domain.Exercise, 0, len(files))
	for i := range files {
		exercises = append(exercises, files[i].ToDomain())
	}

	if len(exercises) == 0 {
		s.logger.Debug("no exercises defined, using placeholder", "module", moduleID)
		exercises = append(exercises, domain.PlaceholderExercise())
	}

	return exercises, nil
}

// ExerciseFiles returns the raw exercise definitions of a module in file
// name order. It returns an empty slice when the module has none.
func (s *FSSource) ExerciseFiles(ctx context.Context, moduleID string) ([]ExerciseFile, error) {
	if err := domain.ValidateModuleID(moduleID); err != nil {
		return nil, err
	}

	dir := path.Join(exercisesDir, moduleID)
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read module dir: %w", err)
		}
		legacy, lerr := s.legacyModule(moduleID)
		if lerr != nil {
			if errors.Is(lerr, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, lerr
		}
		return legacy.Exercises, nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == chapterInfoFile || !isDefinitionFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var files []ExerciseFile
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ef ExerciseFile
		if err := s.decode(path.Join(dir, name), &ef); err != nil {
			s.logger.Warn("skipping exercise definition", "module", moduleID, "file", name, "error", err)
			continue
		}
		if ef.Name == "" {
			s.logger.Warn("skipping unnamed exercise", "module", moduleID, "file", name)
			continue
		}
		files = append(files, ef)
	}

	return files, nil
}

// Metadata returns optional per-module metadata. Resources come from the
// metadata file, the chapter bundle, or the legacy file, in that order.
func (s *FSSource) Metadata(ctx context.Context, moduleID string) (*domain.ModuleMetadata, error) {
	if err := domain.ValidateModuleID(moduleID); err != nil {
		return nil, err
	}

	meta := &domain.ModuleMetadata{ID: moduleID, Resources: map[string][]string{}}

	if info, err := s.chapterInfo(moduleID); err == nil {
		meta.Title = info.Title
		meta.ChapterTitle = info.Title
		mergeResources(meta.Resources, info.Resources)
	} else if legacy, err := s.legacyModule(moduleID); err == nil {
		meta.Title = legacy.Title
		mergeResources(meta.Resources, legacy.Resources)
	}

	var mf MetadataFile
	err := s.decode(path.Join(metadataDir, moduleID+".json"), &mf)
	switch {
	case err == nil:
		if mf.Title != "" {
			meta.Title = mf.Title
		}
		if mf.ChapterTitle != "" {
			meta.ChapterTitle = mf.ChapterTitle
		}
		for lang, links := range mf.Resources {
			meta.Resources[lang] = links
		}
	case !errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("ignoring unreadable metadata", "module", moduleID, "error", err)
	}

	return meta, nil
}

// LessonTemplate returns the markdown template for a module, looked up in
// chapters, then markdown, then the base template of either directory.
func (s *FSSource) LessonTemplate(ctx context.Context, moduleID string) (string, error) {
	if err := domain.ValidateModuleID(moduleID); err != nil {
		return "", err
	}

	candidates := []string{
		path.Join(chaptersDir, moduleID+".md"),
		path.Join(markdownDir, moduleID+".md"),
		path.Join(chaptersDir, baseTemplate+".md"),
		path.Join(markdownDir, baseTemplate+".md"),
	}

	for _, p := range candidates {
		data, err := fs.ReadFile(s.fsys, p)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", p, err)
		}
	}

	return "", fmt.Errorf("%w for module %s", ErrNoTemplate, moduleID)
}

// HasDefinitions reports whether raw exercise definitions exist for a module
func (s *FSSource) HasDefinitions(ctx context.Context, moduleID string) bool {
	files, err := s.ExerciseFiles(ctx, moduleID)
	return err == nil && len(files) > 0
}

func (s *FSSource) chapterInfo(dir string) (*ChapterInfo, error) {
	var info ChapterInfo
	if err := s.decode(path.Join(exercisesDir, dir, chapterInfoFile), &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		info.ID = dir
	}
	return &info, nil
}

func (s *FSSource) legacyModule(id string) (*LegacyModuleFile, error) {
	var lm LegacyModuleFile
	if err := s.decode(path.Join(exercisesDir, id+".json"), &lm); err != nil {
		return nil, err
	}
	if lm.ID == "" {
		lm.ID = id
	}
	return &lm, nil
}

// decode reads a json or yaml file into v depending on its extension
func (s *FSSource) decode(name string, v any) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return err
	}

	switch path.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

func isDefinitionFile(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func mergeResources(dst, src map[string][]string) {
	for lang, links := range src {
		dst[lang] = append([]string(nil), links...)
	}
}
