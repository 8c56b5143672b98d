package main

// Notes:
// - run: we test dispatch and exit codes with buffered output. Conversion
//   itself is covered in convert_test.go.
// - main: not tested (calls os.Exit).
// These are acceptable gaps: we test observable behavior, not process exit.

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRun_Dispatch - Command routing and exit codes
// ---------------------------------------------------------------------------

func TestRun_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", []string{"mdocx"}, ExitUsage, "", "Usage: mdocx"},
		{"unknown command", []string{"mdocx", "frobnicate"}, ExitUsage, "", "Unknown command: frobnicate"},
		{"help", []string{"mdocx", "help"}, ExitSuccess, "Usage: mdocx <command>", ""},
		{"--help", []string{"mdocx", "--help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"mdocx", "help", "convert"}, ExitSuccess, "--math-engine", ""},
		{"help unknown", []string{"mdocx", "help", "nope"}, ExitSuccess, "", "Unknown command: nope"},
		{"version", []string{"mdocx", "version"}, ExitSuccess, "mdocx", ""},
		{"convert help flag", []string{"mdocx", "convert", "-h"}, ExitSuccess, "", "Usage: mdocx convert"},
		{"convert bad flag", []string{"mdocx", "convert", "--bogus"}, ExitUsage, "", "error: invalid usage"},
		{"convert no input", []string{"mdocx", "convert"}, ExitIO, "", "no input specified"},
		{"convert bad workers", []string{"mdocx", "convert", "-w", "99", "x.md"}, ExitUsage, "", "invalid worker count"},
		{"completion unknown shell", []string{"mdocx", "completion", "tcsh"}, ExitUsage, "", "unsupported shell"},
		{"completion usage", []string{"mdocx", "completion"}, ExitSuccess, "Supported shells", ""},
		{"inspect without file", []string{"mdocx", "inspect"}, ExitUsage, "", "exactly one file"},
		{"doctor unknown arg", []string{"mdocx", "doctor", "--yaml"}, ExitUsage, "", "unknown argument"},
		{"doctor help", []string{"mdocx", "doctor", "--help"}, ExitSuccess, "Usage: mdocx doctor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, nil)
			code := run(t.Context(), tt.args, env.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, env.stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", env.stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", env.stderr, tt.wantStderr)
			}
		})
	}
}

func TestRun_ConvertSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "notes.md", "# Notes\n\nbody\n")

	env := newTestEnv(t, nil)
	code := run(t.Context(), []string{"mdocx", "convert", in}, env.Environment)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr: %s", code, env.stderr)
	}
	want := "Created " + filepath.Join(dir, "notes.docx")
	if !strings.Contains(env.stdout.String(), want) {
		t.Errorf("stdout = %q, want %q", env.stdout, want)
	}
}

func TestRun_ConvertFailureExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "bad.md", "FAIL\n")

	env := newTestEnv(t, nil)
	code := run(t.Context(), []string{"mdocx", "convert", in}, env.Environment)

	if code != ExitMath {
		t.Errorf("exit code = %d, want %d", code, ExitMath)
	}
	if !strings.Contains(env.stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want a hint", env.stderr)
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - Pre-parse verbose detection
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"short", []string{"convert", "-v", "a.md"}, true},
		{"long", []string{"convert", "--verbose"}, true},
		{"absent", []string{"convert", "a.md"}, false},
		{"after terminator", []string{"convert", "--", "-v"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hasVerboseFlag(tt.args); got != tt.want {
				t.Errorf("hasVerboseFlag(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestProcsLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	procsLogger(false, &buf)("maxprocs: %d", 4)
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}

	procsLogger(true, &buf)("maxprocs: %d", 4)
	if got := buf.String(); got != "maxprocs: 4\n" {
		t.Errorf("verbose logger wrote %q", got)
	}
}
