package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show course progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules a new course contains",
	Args:  cobra.NoArgs,
	RunE:  runModules,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(modulesCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	printStatus(cmd.OutOrStdout(), m)
	return nil
}

func runModules(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	modules, err := a.courses.Catalog(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bold.Fprintln(out, "Available Modules")
	fmt.Fprintln(out, "=================")
	for _, m := range modules {
		fmt.Fprintf(out, "%-20s %s\n", m.ID, m.Title)
	}
	return nil
}
