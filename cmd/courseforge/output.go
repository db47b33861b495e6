package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/felixgeelhaar/courseforge/internal/domain"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
	bold         = color.New(color.Bold)
)

// statusMarks maps module status to its list marker
var statusMarks = map[domain.ModuleStatus]string{
	domain.ModuleCompleted: color.GreenString("✓"),
	domain.ModuleActive:    color.CyanString("▶"),
	domain.ModuleLocked:    faintColor.Sprint("🔒"),
}

// renderProgressBar creates a visual progress bar
func renderProgressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	empty := width - filled

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}

func printStatus(w io.Writer, m *domain.CourseManifest) {
	done := m.CompletedCount()
	total := len(m.Modules)
	ratio := 0.0
	if total > 0 {
		ratio = float64(done) / float64(total)
	}

	bold.Fprintln(w, m.Name)
	fmt.Fprintf(w, "%s %d/%d modules completed\n\n", renderProgressBar(ratio, 20), done, total)

	for _, mod := range m.Modules {
		line := fmt.Sprintf("%s %-20s %s", statusMarks[mod.Status], mod.ID, mod.Title)
		if mod.Status == domain.ModuleLocked {
			line = faintColor.Sprint(line)
		}
		if mod.ID == m.CurrentModule && !m.CourseCompleted {
			line += color.CyanString("  (current)")
		}
		fmt.Fprintln(w, line)
	}

	if m.CourseCompleted {
		fmt.Fprintln(w)
		successColor.Fprintln(w, "Course completed!")
	}
}

func printOutcome(w io.Writer, out *course.RunOutcome) {
	r := out.Report
	if r.Output != "" {
		fmt.Fprint(w, r.Output)
		if !strings.HasSuffix(r.Output, "\n") {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	switch {
	case r.Passed:
		successColor.Fprintf(w, "✓ %s: %s", out.ModuleID, r.Message)
	case r.TimedOut:
		warnColor.Fprintf(w, "⏱ %s: %s", out.ModuleID, r.Message)
	default:
		errorColor.Fprintf(w, "✗ %s: %s", out.ModuleID, r.Message)
	}
	detail := []string{r.Layout}
	if r.CountsKnown && r.Total > 0 {
		detail = append(detail, fmt.Sprintf("%d/%d passed, %.0f%%", r.Succeeded, r.Total, r.PassRate()*100))
	}
	detail = append(detail, r.Duration.Round(time.Millisecond).String())
	faintColor.Fprintf(w, " (%s)\n", strings.Join(detail, ", "))

	switch {
	case out.CourseCompleted:
		successColor.Fprintln(w, "Congratulations, you completed the course!")
	case out.Advanced:
		fmt.Fprintf(w, "Module %s unlocked. Run %s to start it.\n",
			bold.Sprint(out.NextModule), bold.Sprint("courseforge open"))
	}
}
