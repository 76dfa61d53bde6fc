// Command pile is a personal bookmark manager for the terminal.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/nikbrunner/pile/internal/repository"
)

var (
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
	faint = color.New(color.Faint)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		red.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			faint.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

// errorHint points at the likely cause of a store failure.
func errorHint(err error) string {
	switch {
	case repository.IsFetchError(err):
		return "The bookmark store could not be read. Check the remote and local settings in the config file."
	case repository.IsWriteError(err):
		return "The change was not saved."
	default:
		return ""
	}
}
