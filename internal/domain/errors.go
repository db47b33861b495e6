package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent course-level failures. Components wrap them with
// context and the command layer maps them to one user-facing message.
// -----------------------------------------------------------------------------

// Course errors
var (
	ErrNoWorkspace         = errors.New("no workspace folder")
	ErrCourseNotFound      = errors.New("no course found in this workspace")
	ErrCourseExists        = errors.New("course already exists")
	ErrNoCourseContent     = errors.New("no course content available")
	ErrInvalidManifest     = errors.New("invalid course manifest")
	ErrManifestPathUnknown = errors.New("manifest location unknown")
)

// Module errors
var (
	ErrModuleNotFound  = errors.New("module not found")
	ErrModuleLocked    = errors.New("module is locked")
	ErrInvalidModuleID = errors.New("invalid module id")
	ErrModuleExists    = errors.New("module already exists")
)

// Exercise errors
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrSolutionExists   = errors.New("solution file already exists")
)

// Test errors
var (
	ErrTestsNotFound       = errors.New("no test files found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrRunInProgress       = errors.New("another test run is in progress")
)
