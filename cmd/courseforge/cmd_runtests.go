package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// errTestsFailed makes the process exit non-zero after the report was printed
var errTestsFailed = errors.New("tests failed")

var testCmd = &cobra.Command{
	Use:   "test [module-id]",
	Short: "Run a module's tests",
	Long: `Run the tests of a module. Without an id the module is taken from the working
directory, falling back to the current module. Passing the current module marks
it completed and unlocks the next one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var moduleID string
	if len(args) > 0 {
		moduleID = args[0]
	} else if wd, err := os.Getwd(); err == nil {
		moduleID = a.courses.ModuleForPath(ctx, wd)
	}

	out, err := a.courses.RunTests(ctx, moduleID)
	if out != nil {
		printOutcome(cmd.OutOrStdout(), out)
	}
	if err != nil {
		return err
	}
	if !out.Report.Passed {
		return errTestsFailed
	}
	return nil
}
