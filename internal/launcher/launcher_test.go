package launcher

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEntry(t *testing.T, dir string) string {
	t.Helper()
	entry := filepath.Join(dir, "analyze.py")
	if err := os.WriteFile(entry, []byte("print('ok')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return entry
}

func TestLauncher_Run_Success(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir)
	outDir := filepath.Join(dir, "input")

	var out bytes.Buffer
	l := New(Config{
		Tool:      "python",
		Entry:     entry,
		OutputDir: outDir,
		LogFile:   "analyzer.log",
	}, &out, nil)

	l.lookPath = func(string) (string, error) { return "/usr/bin/python", nil }

	var gotTool string
	var gotArgs []string
	l.run = func(ctx context.Context, tool string, args []string) (int, error) {
		gotTool = tool
		gotArgs = args
		return 0, nil
	}

	code, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if gotTool != "/usr/bin/python" {
		t.Errorf("tool = %s, want /usr/bin/python", gotTool)
	}
	if len(gotArgs) != 1 || gotArgs[0] != entry {
		t.Errorf("args = %v, want [%s]", gotArgs, entry)
	}
	if !strings.Contains(out.String(), "completed successfully") {
		t.Errorf("output = %q, want success message", out.String())
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("output dir was not created: %v", err)
	}
}

func TestLauncher_Run_ToolMissing(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir)
	outDir := filepath.Join(dir, "input")

	var out bytes.Buffer
	l := New(Config{Tool: "python", Entry: entry, OutputDir: outDir}, &out, nil)

	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }

	ran := false
	l.run = func(ctx context.Context, tool string, args []string) (int, error) {
		ran = true
		return 0, nil
	}

	code, err := l.Run(context.Background())
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("err = %v, want ErrToolNotFound", err)
	}
	if code == 0 {
		t.Error("exit code = 0, want non-zero")
	}
	if ran {
		t.Error("child was invoked despite missing tool")
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("output dir was created despite missing tool")
	}
}

func TestLauncher_Run_EntryMissing(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "input")

	var out bytes.Buffer
	l := New(Config{
		Tool:      "python",
		Entry:     filepath.Join(dir, "missing.py"),
		OutputDir: outDir,
	}, &out, nil)

	l.lookPath = func(string) (string, error) { return "/usr/bin/python", nil }

	ran := false
	l.run = func(ctx context.Context, tool string, args []string) (int, error) {
		ran = true
		return 0, nil
	}

	code, err := l.Run(context.Background())
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("err = %v, want ErrEntryNotFound", err)
	}
	if code == 0 {
		t.Error("exit code = 0, want non-zero")
	}
	if ran {
		t.Error("child was invoked despite missing entry")
	}
	// Prerequisite failures must not leave side effects behind.
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("output dir was created despite missing entry")
	}
}

func TestLauncher_Run_ChildFails(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir)

	var out bytes.Buffer
	l := New(Config{
		Tool:    "python",
		Entry:   entry,
		LogFile: "analyzer.log",
	}, &out, nil)

	l.lookPath = func(string) (string, error) { return "/usr/bin/python", nil }
	l.run = func(ctx context.Context, tool string, args []string) (int, error) {
		return 3, nil
	}

	code, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(out.String(), "analyzer.log") {
		t.Errorf("output = %q, want reference to log file", out.String())
	}
}

func TestLauncher_Run_ExtraArgs(t *testing.T) {
	dir := t.TempDir()
	entry := writeEntry(t, dir)

	var out bytes.Buffer
	l := New(Config{
		Tool:  "python",
		Entry: entry,
		Args:  []string{"--fast", "--limit", "10"},
	}, &out, nil)

	l.lookPath = func(string) (string, error) { return "/usr/bin/python", nil }

	var gotArgs []string
	l.run = func(ctx context.Context, tool string, args []string) (int, error) {
		gotArgs = args
		return 0, nil
	}

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{entry, "--fast", "--limit", "10"}
	if len(gotArgs) != len(want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Errorf("args[%d] = %s, want %s", i, gotArgs[i], want[i])
		}
	}
}
