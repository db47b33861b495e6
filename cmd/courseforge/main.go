package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/courseforge/internal/course"
	"github.com/felixgeelhaar/courseforge/internal/domain"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, errTestsFailed):
		case errors.Is(err, domain.ErrModuleLocked):
			fmt.Fprintf(os.Stderr, "%s %s\n", warnColor.Sprint("Warning:"), course.Message(err))
		default:
			fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("Error:"), course.Message(err))
		}
		os.Exit(1)
	}
}
