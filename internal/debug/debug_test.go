package debug

import (
	"bytes"
	"testing"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	oldOut, oldErr := stdout, stderr
	t.Cleanup(func() {
		stdout, stderr = oldOut, oldErr
	})
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	return &out, &errOut
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"enabled by env", true, false, true},
		{"enabled by verbose flag", false, true, true},
		{"disabled by default", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled, oldVerbose := enabled, verboseMode
			defer func() {
				enabled, verboseMode = oldEnabled, oldVerbose
			}()

			enabled = tt.env
			SetVerbose(tt.verbose)

			if got := Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogf(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantOutput string
	}{
		{"outputs when enabled", true, "fetching sprint: S1\n"},
		{"no output when disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldEnabled := enabled
			defer func() { enabled = oldEnabled }()
			_, errOut := captureOutput(t)

			enabled = tt.enabled
			Logf("fetching sprint: %s\n", "S1")

			if got := errOut.String(); got != tt.wantOutput {
				t.Errorf("Logf() output = %q, want %q", got, tt.wantOutput)
			}
		})
	}
}

func TestPrintNormalRespectsQuiet(t *testing.T) {
	oldQuiet := quietMode
	defer func() { quietMode = oldQuiet }()
	out, _ := captureOutput(t)

	SetQuiet(false)
	PrintNormal("Sprint: %s\n", "S1")
	PrintlnNormal("done")

	SetQuiet(true)
	if !IsQuiet() {
		t.Fatal("IsQuiet() = false after SetQuiet(true)")
	}
	PrintNormal("Sprint: %s\n", "hidden")
	PrintlnNormal("hidden")

	if got, want := out.String(), "Sprint: S1\ndone\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWarnfIgnoresQuiet(t *testing.T) {
	oldQuiet := quietMode
	defer func() { quietMode = oldQuiet }()
	_, errOut := captureOutput(t)

	SetQuiet(true)
	Warnf("cache write failed: %s", "disk full")

	if got, want := errOut.String(), "Warning: cache write failed: disk full\n"; got != want {
		t.Errorf("Warnf() output = %q, want %q", got, want)
	}
}
