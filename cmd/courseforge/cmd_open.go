package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

var openLaunch bool

var openCmd = &cobra.Command{
	Use:   "open [module-id]",
	Short: "Print or open a module's lesson",
	Long: `Print the path of a module's lesson (default: the current module). Locked
modules cannot be opened. A missing module folder is generated first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openLaunch, "launch", false,
		"Open the lesson with the system viewer ($EDITOR when set)")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	var moduleID string
	if len(args) > 0 {
		moduleID = args[0]
	}

	path, err := a.courses.OpenModule(ctx, moduleID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if openLaunch {
		return launch(path)
	}
	return nil
}

// launch opens path in $EDITOR, or detached in the platform viewer
func launch(path string) error {
	if editor := os.Getenv("EDITOR"); editor != "" {
		c := exec.Command(editor, path)
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		return c.Run()
	}

	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", path)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		c = exec.Command("xdg-open", path)
	}
	configureViewerProcess(c)
	if err := c.Start(); err != nil {
		return fmt.Errorf("open lesson: %w", err)
	}
	return c.Process.Release()
}
