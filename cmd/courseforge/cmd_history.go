package main

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/courseforge/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [module-id]",
	Short: "Show recorded test runs",
	Long: `Show the test runs recorded for the course in the workspace, newest first,
followed by per-module totals.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.courses.Status(ctx)
	if err != nil {
		return err
	}
	store, err := a.openHistory(ctx)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	filter := history.Filter{CourseName: m.Name, Limit: historyLimit}
	if len(args) > 0 {
		filter.ModuleID = args[0]
	}
	runs, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No test runs recorded yet.")
		return nil
	}

	bold.Fprintln(out, "Test Runs")
	fmt.Fprintln(out, "=========")
	for _, r := range runs {
		mark := errorColor.Sprint("✗")
		if r.Passed {
			mark = successColor.Sprint("✓")
		}
		counts := ""
		if r.Total > 0 {
			counts = fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
		}
		line := fmt.Sprintf("%s %s  %-20s %-8s %s", mark,
			r.CreatedAt.Local().Format(time.DateTime), r.ModuleID, counts, r.Duration.Round(time.Millisecond))
		if r.Advanced {
			line += successColor.Sprint("  unlocked next")
		}
		fmt.Fprintln(out, line)
	}

	stats, err := store.Stats(ctx, m.Name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	bold.Fprintln(out, "Per Module")
	fmt.Fprintln(out, "==========")
	for _, s := range stats {
		rate := float64(s.Passes) / float64(s.Runs)
		fmt.Fprintf(out, "%-20s %s %d/%d passed\n", s.ModuleID, renderProgressBar(rate, 20), s.Passes, s.Runs)
	}
	return nil
}
