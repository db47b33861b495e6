package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestReport is the reduced result of running one module's tests
type TestReport struct {
	Passed    bool
	Output    string // full combined output, never truncated
	Layout    string // which on-disk layout was executed
	Harness   string // mocha, builtin, unittest
	Total     int
	Succeeded int
	Failed    int
	// CountsKnown is false when no summary line could be parsed and the
	// verdict rests on exit codes alone.
	CountsKnown bool
	TimedOut    bool
	Duration    time.Duration
	Message     string // short human explanation for failures
}

// TestRun is a recorded execution of a module's tests
type TestRun struct {
	ID         uuid.UUID
	CourseName string
	ModuleID   string
	Layout     string
	Passed     bool
	Advanced   bool // the run unlocked the next module
	Total      int
	Succeeded  int
	Failed     int
	TimedOut   bool
	Duration   time.Duration
	CreatedAt  time.Time
}

// NewTestRun builds a history record from a report
func NewTestRun(courseName, moduleID string, report *TestReport, advanced bool) *TestRun {
	return &TestRun{
		ID:         uuid.New(),
		CourseName: courseName,
		ModuleID:   moduleID,
		Layout:     report.Layout,
		Passed:     report.Passed,
		Advanced:   advanced,
		Total:      report.Total,
		Succeeded:  report.Succeeded,
		Failed:     report.Failed,
		TimedOut:   report.TimedOut,
		Duration:   report.Duration,
		CreatedAt:  time.Now(),
	}
}

// PassRate returns the fraction of passing tests, or 0 when counts are unknown
func (r *TestReport) PassRate() float64 {
	if !r.CountsKnown || r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total)
}
