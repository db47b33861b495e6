// Package course implements the learner-facing commands: create a course,
// run a module's tests and open a module's lesson.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/courseforge/internal/assets"
	"github.com/felixgeelhaar/courseforge/internal/domain"
	"github.com/felixgeelhaar/courseforge/internal/generator"
	"github.com/felixgeelhaar/courseforge/internal/locator"
	"github.com/felixgeelhaar/courseforge/internal/manifest"
	"github.com/felixgeelhaar/courseforge/internal/progress"
	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/google/uuid"
)

// Assets is the asset source the service reads modules and raw exercise
// definitions from
type Assets interface {
	assets.Source
	locator.Definitions
}

// Executor runs located tests
type Executor interface {
	Execute(ctx context.Context, st locator.Structure) (*domain.TestReport, error)
}

// RunRecorder stores finished runs
type RunRecorder interface {
	Record(ctx context.Context, run *domain.TestRun) error
}

// Service coordinates manifest, generator, locator and executor for one
// workspace
type Service struct {
	root     string
	store    *manifest.Store
	assets   Assets
	source   assets.Source
	gen      *generator.Generator
	progress *progress.Manager
	executor Executor
	history  RunRecorder
	guard    bulkhead.Bulkhead[*RunOutcome]
	logger   *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistory records every test run in r
func WithHistory(r RunRecorder) Option {
	return func(s *Service) {
		s.history = r
	}
}

// NewService creates the course service for the workspace rooted at root
func NewService(root string, src Assets, exec Executor, opts ...Option) *Service {
	s := &Service{
		root:     root,
		assets:   src,
		executor: exec,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.source = assets.NewRegistry(src)
	s.store = manifest.NewStore(root, s.logger)
	s.gen = generator.New(s.source, generator.WithLogger(s.logger))
	s.progress = progress.NewManager(s.store, s.gen, s.logger)
	s.guard = bulkhead.New[*RunOutcome](bulkhead.Config{
		MaxConcurrent: 1,
		MaxQueue:      1,
		QueueTimeout:  time.Second,
	})
	return s
}

// Root returns the workspace root
func (s *Service) Root() string {
	return s.root
}

// CreateRequest selects the course language and, optionally, a workspace
// other than the service root
type CreateRequest struct {
	Language      string
	WorkspaceRoot string
}

// CreateResult describes a newly created course
type CreateResult struct {
	Manifest   *domain.CourseManifest
	CourseDir  string
	LessonPath string
}

// CreateCourse discovers the available modules, writes a manifest into
// <root>/programming-course-<language> and generates the first module
func (s *Service) CreateCourse(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	root := req.WorkspaceRoot
	if root == "" {
		root = s.root
	}
	if root == "" {
		return nil, domain.ErrNoWorkspace
	}
	language := req.Language
	if _, err := generator.ProfileFor(language); err != nil {
		return nil, err
	}

	modules, err := assets.Discover(ctx, s.source)
	if err != nil {
		return nil, err
	}
	m, err := domain.NewCourseManifest(language, modules)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, domain.CourseFolderName(language))
	if err := s.store.Create(ctx, dir, m); err != nil {
		return nil, err
	}

	first := m.Modules[0]
	if err := s.gen.Generate(ctx, dir, first, language); err != nil {
		return nil, fmt.Errorf("generate module %s: %w", first.ID, err)
	}

	s.logger.Info("course created",
		"dir", dir,
		"language", language,
		"modules", len(m.Modules),
	)

	return &CreateResult{
		Manifest:   m,
		CourseDir:  dir,
		LessonPath: filepath.Join(dir, first.ID, generator.LessonFile),
	}, nil
}

// RunOutcome is the result of RunTests
type RunOutcome struct {
	RunID           uuid.UUID
	ModuleID        string
	Report          *domain.TestReport
	Advanced        bool   // the module was completed by this run
	NextModule      string // newly unlocked module, empty when none
	CourseCompleted bool
	Manifest        *domain.CourseManifest
}

// RunTests runs the tests of moduleID, or of the current module when
// moduleID is empty. A passing run of the current module completes it and
// unlocks the next one. Runs are serialized; a run arriving while another is
// in flight and queued fails with domain.ErrRunInProgress.
//
// When the tests pass but progress cannot be saved, the outcome is returned
// together with the error so the output can still be shown.
func (s *Service) RunTests(ctx context.Context, moduleID string) (*RunOutcome, error) {
	var started atomic.Bool
	out, err := s.guard.Execute(ctx, func(ctx context.Context) (*RunOutcome, error) {
		started.Store(true)
		return s.runTests(ctx, moduleID)
	})
	if err != nil && !started.Load() {
		return nil, fmt.Errorf("%w: %w", domain.ErrRunInProgress, err)
	}
	return out, err
}

func (s *Service) runTests(ctx context.Context, moduleID string) (*RunOutcome, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.resolveModule(m, moduleID)
	if err != nil {
		return nil, err
	}

	st, err := locator.New(s.store.CourseDir(), locator.NewWorkspaceFinder(s.root), s.assets, s.logger).
		Locate(ctx, id, m.Language)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	logger := s.logger.With("run_id", runID.String(), "module", id)
	logger.Debug("running module tests", "layout", st.Kind.String())

	report, err := s.executor.Execute(ctx, st)
	if err != nil {
		return nil, err
	}

	outcome := &RunOutcome{
		RunID:    runID,
		ModuleID: id,
		Report:   report,
		Manifest: m,
	}

	var progressErr error
	if report.Passed && id == m.CurrentModule && !m.CourseCompleted {
		next, err := s.progress.CompleteCurrentModule(ctx, m)
		if err != nil {
			progressErr = fmt.Errorf("tests passed but progress was not saved: %w", err)
		} else if next != m {
			outcome.Advanced = true
			outcome.Manifest = next
			outcome.CourseCompleted = next.CourseCompleted
			if !next.CourseCompleted {
				outcome.NextModule = next.CurrentModule
			}
		}
	}

	logger.Info("tests finished",
		"passed", report.Passed,
		"total", report.Total,
		"failed", report.Failed,
		"timed_out", report.TimedOut,
		"advanced", outcome.Advanced,
		"duration", report.Duration,
	)
	s.record(ctx, m.Name, outcome)

	return outcome, progressErr
}

// resolveModule applies the module guard: the id must be in the manifest and
// locked modules other than the first are refused
func (s *Service) resolveModule(m *domain.CourseManifest, moduleID string) (string, error) {
	id := moduleID
	if id == "" {
		id = m.CurrentModule
	}
	if err := domain.ValidateModuleID(id); err != nil {
		return "", err
	}
	if _, ok := m.Module(id); !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	if !m.IsTestable(id) {
		return "", fmt.Errorf("%w: %s", domain.ErrModuleLocked, id)
	}
	return id, nil
}

func (s *Service) record(ctx context.Context, courseName string, o *RunOutcome) {
	if s.history == nil {
		return
	}
	run := domain.NewTestRun(courseName, o.ModuleID, o.Report, o.Advanced)
	run.ID = o.RunID
	if err := s.history.Record(ctx, run); err != nil {
		s.logger.Warn("record test run", "run_id", o.RunID.String(), "error", err)
	}
}

// lessonNames are tried in order when opening a module
var lessonNames = []string{generator.LessonFile, "lesson.md", "README.md"}

// OpenModule returns the lesson document of moduleID, or of the current
// module when moduleID is empty, generating the module directory when an
// unlocked module has none yet
func (s *Service) OpenModule(ctx context.Context, moduleID string) (string, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}

	id, err := s.resolveModule(m, moduleID)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.store.CourseDir(), id)
	for _, name := range lessonNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	mod, _ := m.Module(id)
	if err := s.gen.Generate(ctx, s.store.CourseDir(), *mod, m.Language); err != nil {
		return "", fmt.Errorf("generate module %s: %w", id, err)
	}
	return filepath.Join(dir, generator.LessonFile), nil
}

// SolutionRequest names the exercise whose starter code becomes the
// learner's solution file
type SolutionRequest struct {
	ModuleID string // empty selects the current module
	Exercise string
	Force    bool // replace an existing file
}

// CreateSolutionFile writes the starter code of an exercise definition to
// <course>/<module>/<name>.<ext>, where modules tested from their
// definitions pick up the learner's code. Python files use the snake_case
// name. An existing file is only replaced when req.Force is set.
func (s *Service) CreateSolutionFile(ctx context.Context, req SolutionRequest) (string, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	id, err := s.resolveModule(m, req.ModuleID)
	if err != nil {
		return "", err
	}

	defs, err := s.assets.ExerciseFiles(ctx, id)
	if err != nil {
		return "", err
	}
	var ex *domain.Exercise
	for i := range defs {
		if defs[i].Name == req.Exercise {
			d := defs[i].ToDomain()
			ex = &d
			break
		}
	}
	if ex == nil {
		return "", fmt.Errorf("%w: %q in module %s", domain.ErrExerciseNotFound, req.Exercise, id)
	}
	code := ex.Template(m.Language)
	if code == "" {
		return "", fmt.Errorf("%w: %q has no %s starter code", domain.ErrExerciseNotFound, ex.Name, m.Language)
	}

	name := ex.Name + ".js"
	if m.Language == generator.LanguagePython {
		name = generator.SnakeName(ex.Name) + ".py"
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", domain.ErrExerciseNotFound, ex.Name)
	}

	dir := filepath.Join(s.store.CourseDir(), id)
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil && !req.Force {
		return "", fmt.Errorf("%w: %s", domain.ErrSolutionExists, target)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create module directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(strings.TrimRight(code, "\n")+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write solution file: %w", err)
	}

	s.logger.Info("solution file created", "module", id, "exercise", ex.Name, "path", target)
	return target, nil
}

// Status returns the current manifest
func (s *Service) Status(ctx context.Context) (*domain.CourseManifest, error) {
	return s.store.Load(ctx)
}

// Catalog lists the modules a new course would contain
func (s *Service) Catalog(ctx context.Context) ([]domain.ModuleInfo, error) {
	modules, err := assets.Discover(ctx, s.source)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, domain.ErrNoCourseContent
	}
	return modules, nil
}

// IsUserError reports whether err is an expected condition the learner can
// fix, as opposed to an internal failure
func IsUserError(err error) bool {
	for _, target := range []error{
		domain.ErrNoWorkspace,
		domain.ErrCourseNotFound,
		domain.ErrCourseExists,
		domain.ErrModuleNotFound,
		domain.ErrModuleLocked,
		domain.ErrInvalidModuleID,
		domain.ErrTestsNotFound,
		domain.ErrUnsupportedLanguage,
		domain.ErrRunInProgress,
		domain.ErrNoCourseContent,
		domain.ErrInvalidManifest,
		domain.ErrModuleExists,
		domain.ErrExerciseNotFound,
		domain.ErrSolutionExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Message maps an error to the single line shown to the learner
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoWorkspace):
		return "No workspace folder. Open a folder first."
	case errors.Is(err, domain.ErrCourseNotFound):
		return "No course found in this workspace. Create a course first."
	case errors.Is(err, domain.ErrInvalidManifest):
		return "The course.json of this course is damaged. Fix it or create the course again."
	case errors.Is(err, domain.ErrCourseExists):
		return "A course for this language already exists in this workspace."
	case errors.Is(err, domain.ErrModuleLocked):
		return "This module is locked. Complete the previous modules first."
	case errors.Is(err, domain.ErrModuleNotFound), errors.Is(err, domain.ErrInvalidModuleID):
		return "Module not found in this course."
	case errors.Is(err, domain.ErrTestsNotFound):
		return "No tests found for this module."
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return "Unsupported language. Choose javascript or python."
	case errors.Is(err, domain.ErrRunInProgress):
		return "Tests are already running. Wait for them to finish."
	case errors.Is(err, domain.ErrNoCourseContent):
		return "No course content is available."
	case errors.Is(err, domain.ErrModuleExists):
		return "A module with this id already exists in the course content."
	case errors.Is(err, domain.ErrExerciseNotFound):
		return "Exercise not found in this module."
	case errors.Is(err, domain.ErrSolutionExists):
		return "The solution file already exists. Use --force to overwrite it."
	default:
		return err.Error()
	}
}
