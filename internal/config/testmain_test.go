package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestMain points config discovery away from the user's machine and clears
// the environment variables that would leak into Load.
func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "sprintreport-config-tests-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	oldWD, _ := os.Getwd()
	_ = os.Chdir(tmp)
	_ = os.Setenv("HOME", tmp)
	_ = os.Setenv("USERPROFILE", tmp) // Windows compatibility
	_ = os.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg-config"))
	for _, name := range []string{
		"JIRA_HOST", "JIRA_USER", "JIRA_PASS",
		"SPRINTREPORT_CONFIG", "SPRINTREPORT_BOARD", "SPRINTREPORT_PROJECT",
		"SPRINTREPORT_JIRA_HOST", "SPRINTREPORT_JIRA_USER", "SPRINTREPORT_JIRA_PASS",
	} {
		_ = os.Unsetenv(name)
	}
	ResetForTesting()

	code := m.Run()

	ResetForTesting()
	_ = os.Chdir(oldWD)
	_ = os.RemoveAll(tmp)
	os.Exit(code)
}
