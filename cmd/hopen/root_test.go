package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmurray2011/hopen/internal/filesystem"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newTestCmd creates a fresh command instance for testing (avoids global state issues)
func newTestCmd() *cobra.Command {
	// Reset viper for each test
	viper.Reset()

	cmd := &cobra.Command{
		Use:           "hopen [file...]",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runOpen,
	}
	addFlags(cmd)
	bindFlags(cmd)
	return cmd
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newTestCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCLI_OpenExistingFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(testFile, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, testFile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := testFile + ": opened (5 bytes)\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestCLI_UnreadablePathPrintsDiagnostic(t *testing.T) {
	path := "/nonexistent/x.bin"

	out, _, err := runCmd(t, path)
	if err == nil {
		t.Fatal("expected error for unopenable path")
	}
	if out != "unable to read file /nonexistent/x.bin\n" {
		t.Errorf("got %q", out)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestCLI_QuietSuppressesDiagnostic(t *testing.T) {
	out, _, err := runCmd(t, "-q", "/nonexistent/x.bin")
	if err == nil {
		t.Fatal("expected error for unopenable path")
	}
	if out != "" {
		t.Errorf("expected no output with -q, got %q", out)
	}
}

func TestCLI_MultipleFilesContinuesPastFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	if err := os.WriteFile(good, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "missing", "bad.bin")

	out, _, err := runCmd(t, bad, good)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out, "unable to read file "+bad+"\n") {
		t.Errorf("missing diagnostic in %q", out)
	}
	if !strings.Contains(out, good+": opened (3 bytes)\n") {
		t.Errorf("good file not reported in %q", out)
	}
}

func TestCLI_CreatesMissingFileWithoutTruncating(t *testing.T) {
	dir := t.TempDir()
	created := filepath.Join(dir, "new.bin")
	existing := filepath.Join(dir, "old.bin")
	if err := os.WriteFile(existing, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, created, existing)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, created+": opened (0 bytes)") {
		t.Errorf("created file not reported in %q", out)
	}

	got, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "keep me" {
		t.Errorf("existing content changed to %q", got)
	}
}

func TestCLI_Truncate(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(testFile, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, "--truncate", testFile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != testFile+": opened (0 bytes)\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLI_ReadOnlyDoesNotCreate(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "absent.bin")

	out, _, err := runCmd(t, "-m", "r", testFile)
	if err == nil {
		t.Fatal("expected error for missing file in read-only mode")
	}
	if out != "unable to read file "+testFile+"\n" {
		t.Errorf("got %q", out)
	}
	if _, statErr := os.Stat(testFile); !os.IsNotExist(statErr) {
		t.Error("read-only open created the file")
	}
}

func TestCLI_InvalidMode(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "data.bin")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown mode", []string{"-m", "x", testFile}},
		{"truncate read-only", []string{"-m", "r", "--truncate", testFile}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCmd(t, tt.args...)
			if !errors.Is(err, filesystem.ErrInvalidMode) {
				t.Errorf("error = %v, want ErrInvalidMode", err)
			}
			if out != "" {
				t.Errorf("expected no output, got %q", out)
			}
		})
	}
}

func TestCLI_Cat(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(a, []byte("first\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte{0x00, 0xff}, 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCmd(t, "-c", a, b)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := "first\n\x00\xff"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestCLI_WaitForFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "later.bin")

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(testFile, []byte("ready"), 0644)
	}()

	out, _, err := runCmd(t, "-w", "--poll-interval", "10ms", "--wait-timeout", "5s", "-m", "r", testFile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != testFile+": opened (5 bytes)\n" {
		t.Errorf("got %q", out)
	}
}

func TestCLI_WaitTimeout(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "never.bin")

	_, _, err := runCmd(t, "-w", "--poll-interval", "10ms", "--wait-timeout", "50ms", testFile)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
	if _, statErr := os.Stat(testFile); !os.IsNotExist(statErr) {
		t.Error("file was opened after the wait timed out")
	}
}

func TestCLI_VerboseLogsLifecycle(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "data.bin")

	_, errOut, err := runCmd(t, "-v", testFile)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(errOut, "opened") || !strings.Contains(errOut, "handle taken") {
		t.Errorf("expected lifecycle logs, got %q", errOut)
	}
}

func TestCLI_EnvOverridesMode(t *testing.T) {
	t.Setenv("HOPEN_MODE", "r")
	testFile := filepath.Join(t.TempDir(), "absent.bin")

	_, _, err := runCmd(t, testFile)
	if err == nil {
		t.Fatal("expected HOPEN_MODE=r to prevent creating the file")
	}
	if _, statErr := os.Stat(testFile); !os.IsNotExist(statErr) {
		t.Error("file was created despite HOPEN_MODE=r")
	}
}

func TestCLI_NoArgs(t *testing.T) {
	if _, _, err := runCmd(t); err == nil {
		t.Error("expected error with no files")
	}
}

func TestOpenModeFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		create   bool
		truncate bool
		want     filesystem.Mode
		wantErr  bool
	}{
		{"default", "rw", true, false, filesystem.DefaultMode, false},
		{"read-only ignores create", "r", true, false, filesystem.Mode{Read: true, Perm: 0644}, false},
		{"write truncate", "w", true, true, filesystem.Mode{Write: true, Create: true, Truncate: true, Perm: 0644}, false},
		{"no create", "rw", false, false, filesystem.Mode{Read: true, Write: true, Perm: 0644}, false},
		{"read-only truncate", "r", false, true, filesystem.Mode{}, true},
		{"bad mode", "rx", true, false, filesystem.Mode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			viper.Set("mode", tt.mode)
			viper.Set("create", tt.create)
			viper.Set("truncate", tt.truncate)

			got, err := openModeFromConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("openModeFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("openModeFromConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
