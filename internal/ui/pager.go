package ui

// Long reports go through $PAGER when stdout is a terminal and the rendered
// tables do not fit on one screen. Structured formats never page.

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// PagerOptions carries the report command's --no-pager flag.
type PagerOptions struct {
	NoPager bool
}

// shouldUsePager determines if output should be piped to a pager.
// Returns false if:
// - NoPager option is set
// - SPRINTREPORT_NO_PAGER environment variable is set
// - stdout is not a TTY (e.g., piped to another command)
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager {
		return false
	}
	if os.Getenv("SPRINTREPORT_NO_PAGER") != "" {
		return false
	}
	return IsTerminal()
}

// pagerCommand returns the pager command to use.
// Checks SPRINTREPORT_PAGER, then PAGER, defaults to "less".
func pagerCommand() string {
	if pager := os.Getenv("SPRINTREPORT_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// terminalHeight returns the height of the terminal in lines.
// Returns 0 if unable to determine (not a TTY).
func terminalHeight() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}

	_, height, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return height
}

// contentHeight counts the number of lines in the content.
func contentHeight(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}

// ToPager writes a rendered report to w, through the pager when stdout is a
// terminal shorter than the report. The pager's stdout is w.
func ToPager(w io.Writer, content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		_, err := fmt.Fprint(w, content)
		return err
	}

	termHeight := terminalHeight()
	if termHeight > 0 && contentHeight(content) <= termHeight-1 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	// Parse pager command (may include arguments like "less -R")
	parts := strings.Fields(pagerCommand())
	if len(parts) == 0 {
		_, err := fmt.Fprint(w, content)
		return err
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command comes from SPRINTREPORT_PAGER/PAGER
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr

	// -R: Allow ANSI color codes
	// -F: Quit if content fits on one screen
	// -X: Don't clear screen on exit
	if os.Getenv("LESS") == "" {
		cmd.Env = append(os.Environ(), "LESS=-RFX")
	} else {
		cmd.Env = os.Environ()
	}

	return cmd.Run()
}
