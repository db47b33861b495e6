package main

import (
	"fmt"

	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/spf13/cobra"
)

var (
	solutionForce  bool
	solutionLaunch bool
)

var solutionCmd = &cobra.Command{
	Use:   "solution <module-id> <exercise>",
	Short: "Write an exercise's starter code as your solution file",
	Long: `Copy the starter code of an exercise into <course>/<module-id>/<exercise>.js
(or <exercise>.py in snake_case for Python). Modules tested straight from their
exercise definitions run this file as your solution. An existing file is kept
unless --force is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runSolution,
}

func init() {
	solutionCmd.Flags().BoolVarP(&solutionForce, "force", "f", false, "Overwrite an existing solution file")
	solutionCmd.Flags().BoolVar(&solutionLaunch, "launch", false, "Open the file when it is written")
	rootCmd.AddCommand(solutionCmd)
}

func runSolution(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.courses.CreateSolutionFile(ctx, course.SolutionRequest{
		ModuleID: args[0],
		Exercise: args[1],
		Force:    solutionForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "✓ Created solution file for %s\n", args[1])
	fmt.Fprintf(out, "  %s\n", path)

	if solutionLaunch {
		return launch(path)
	}
	return nil
}
