// Package debug is the sprintreport logger: debug lines gated by
// SPRINTREPORT_DEBUG or --verbose, informational lines gated by --quiet,
// and warnings that are always shown.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	enabled     = os.Getenv("SPRINTREPORT_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// SetOutput redirects stdout and stderr writes. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func Logf(format string, args ...interface{}) {
	if Enabled() {
		write(stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		write(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...interface{}) {
	if !quietMode {
		write(stdout, "%s\n", fmt.Sprint(args...))
	}
}

// Warnf prints a "Warning: " line to stderr regardless of quiet mode.
func Warnf(format string, args ...interface{}) {
	write(stderr, "Warning: "+format+"\n", args...)
}

func write(w io.Writer, format string, args ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()
	fmt.Fprintf(w, format, args...)
}
