package main

import (
	"github.com/spf13/cobra"
)

var (
	workspaceFlag string
	assetsFlag    string
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "courseforge",
	Short: "courseforge - learn to code one module at a time",
	Long: `courseforge scaffolds a programming course into your workspace. Each module
comes with a lesson, exercise stubs and tests; passing the tests of the current
module unlocks the next one.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("courseforge {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "",
		"Workspace folder (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&assetsFlag, "assets", "",
		"Course content directory (default: built-in content)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false,
		"Log debug output to stderr")
}
