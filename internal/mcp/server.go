package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/felixgeelhaar/courseforge/internal/domain"
	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"
)

// Server exposes the course commands as MCP tools
type Server struct {
	mcpServer *server.Server
	courses   *course.Service
}

// Config contains configuration for the MCP server
type Config struct {
	Courses *course.Service
	Version string
}

// NewServer creates a new MCP server for courseforge
func NewServer(cfg Config) *Server {
	s := &Server{
		courses: cfg.Courses,
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s.mcpServer = server.New(server.Info{
		Name:    "courseforge",
		Version: version,
	}, server.WithInstructions(`
courseforge scaffolds a programming course into the workspace and tracks progress.
Modules unlock one at a time: passing the tests of the current module completes it
and generates the next one.

Available tools:
- course_create: Create a JavaScript or Python course in the workspace
- course_run_tests: Run the tests of a module (default: the current module)
- course_status: Show module statuses and the current module
- course_open: Get the lesson file of an unlocked module
- course_modules: List the modules a new course contains
`))

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("course_create").
		Description("Create a programming course in the workspace and generate its first module.").
		Handler(s.handleCreate)

	s.mcpServer.Tool("course_run_tests").
		Description("Run a module's tests. Passing the current module unlocks the next one.").
		Handler(s.handleRunTests)

	s.mcpServer.Tool("course_status").
		Description("Get course progress.").
		Handler(s.handleStatus)

	s.mcpServer.Tool("course_open").
		Description("Get the lesson file of an unlocked module.").
		Handler(s.handleOpen)

	s.mcpServer.Tool("course_modules").
		Description("List the modules available for a new course.").
		Handler(s.handleModules)
}

type CreateInput struct {
	Language string `json:"language" jsonschema:"description=Course language,enum=javascript,enum=python"`
}

type CreateOutput struct {
	Name       string `json:"name"`
	CourseDir  string `json:"course_dir"`
	Modules    int    `json:"modules"`
	LessonPath string `json:"lesson_path"`
	Message    string `json:"message"`
}

type RunTestsInput struct {
	ModuleID string `json:"module_id,omitempty" jsonschema:"description=Module ID such as 01-intro (default: current module)"`
}

type RunTestsOutput struct {
	RunID           string `json:"run_id"`
	ModuleID        string `json:"module_id"`
	Passed          bool   `json:"passed"`
	Layout          string `json:"layout"`
	Total           int    `json:"total,omitempty"`
	Failed          int    `json:"failed,omitempty"`
	TimedOut        bool   `json:"timed_out,omitempty"`
	Advanced        bool   `json:"advanced"`
	NextModule      string `json:"next_module,omitempty"`
	CourseCompleted bool   `json:"course_completed,omitempty"`
	Output          string `json:"output"`
	Summary         string `json:"summary"`
}

type StatusInput struct{}

type ModuleStatus struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Current bool   `json:"current,omitempty"`
}

type StatusOutput struct {
	Name            string         `json:"name"`
	Language        string         `json:"language"`
	CurrentModule   string         `json:"current_module"`
	Completed       int            `json:"completed"`
	CourseCompleted bool           `json:"course_completed"`
	Modules         []ModuleStatus `json:"modules"`
}

type OpenInput struct {
	ModuleID string `json:"module_id,omitempty" jsonschema:"description=Module ID (default: current module)"`
}

type OpenOutput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type ModulesInput struct{}

type ModulesOutput struct {
	Modules []ModuleStatus `json:"modules"`
}

func (s *Server) handleCreate(ctx context.Context, input CreateInput) (CreateOutput, error) {
	res, err := s.courses.CreateCourse(ctx, course.CreateRequest{
		Language: strings.ToLower(strings.TrimSpace(input.Language)),
	})
	if err != nil {
		return CreateOutput{}, toolError(err)
	}

	return CreateOutput{
		Name:       res.Manifest.Name,
		CourseDir:  res.CourseDir,
		Modules:    len(res.Manifest.Modules),
		LessonPath: res.LessonPath,
		Message:    fmt.Sprintf("Course created. Start with %s.", res.Manifest.CurrentModule),
	}, nil
}

func (s *Server) handleRunTests(ctx context.Context, input RunTestsInput) (RunTestsOutput, error) {
	out, err := s.courses.RunTests(ctx, strings.TrimSpace(input.ModuleID))
	if out == nil {
		return RunTestsOutput{}, toolError(err)
	}

	report := out.Report
	result := RunTestsOutput{
		RunID:           out.RunID.String(),
		ModuleID:        out.ModuleID,
		Passed:          report.Passed,
		Layout:          report.Layout,
		Total:           report.Total,
		Failed:          report.Failed,
		TimedOut:        report.TimedOut,
		Advanced:        out.Advanced,
		NextModule:      out.NextModule,
		CourseCompleted: out.CourseCompleted,
		Output:          report.Output,
		Summary:         summary(out),
	}
	if err != nil {
		result.Summary += " " + course.Message(err)
	}
	return result, nil
}

func (s *Server) handleStatus(ctx context.Context, input StatusInput) (StatusOutput, error) {
	m, err := s.courses.Status(ctx)
	if err != nil {
		return StatusOutput{}, toolError(err)
	}

	out := StatusOutput{
		Name:            m.Name,
		Language:        m.Language,
		CurrentModule:   m.CurrentModule,
		Completed:       m.CompletedCount(),
		CourseCompleted: m.CourseCompleted,
	}
	for _, mod := range m.Modules {
		out.Modules = append(out.Modules, ModuleStatus{
			ID:      mod.ID,
			Title:   mod.Title,
			Status:  string(mod.Status),
			Current: mod.ID == m.CurrentModule,
		})
	}
	return out, nil
}

func (s *Server) handleOpen(ctx context.Context, input OpenInput) (OpenOutput, error) {
	path, err := s.courses.OpenModule(ctx, strings.TrimSpace(input.ModuleID))
	if err != nil {
		return OpenOutput{}, toolError(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return OpenOutput{}, fmt.Errorf("read lesson: %w", err)
	}
	return OpenOutput{Path: path, Content: string(data)}, nil
}

func (s *Server) handleModules(ctx context.Context, input ModulesInput) (ModulesOutput, error) {
	modules, err := s.courses.Catalog(ctx)
	if err != nil {
		return ModulesOutput{}, toolError(err)
	}

	var out ModulesOutput
	for _, mod := range modules {
		out.Modules = append(out.Modules, ModuleStatus{ID: mod.ID, Title: mod.Title, Status: string(domain.ModuleLocked)})
	}
	if len(out.Modules) > 0 {
		out.Modules[0].Status = string(domain.ModuleActive)
	}
	return out, nil
}

func summary(out *course.RunOutcome) string {
	r := out.Report
	switch {
	case out.CourseCompleted:
		return "All tests passed. Course completed!"
	case out.Advanced:
		return fmt.Sprintf("All tests passed. Module %s unlocked.", out.NextModule)
	case r.Passed:
		return "All tests passed."
	case r.Message != "":
		return "Tests failed: " + r.Message + "."
	default:
		return "Tests failed."
	}
}

// toolError keeps learner-facing errors readable and preserves the chain
func toolError(err error) error {
	if course.IsUserError(err) {
		return fmt.Errorf("%s: %w", course.Message(err), err)
	}
	return err
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server on HTTP at addr
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server (for testing)
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
