package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Sentinel errors reported before any side effect happens.
var (
	ErrToolNotFound  = errors.New("required tool not found on PATH")
	ErrEntryNotFound = errors.New("entry file not found")
)

// Config holds launcher settings.
type Config struct {
	// Tool is the executable looked up on PATH before anything runs.
	Tool string

	// Entry is the entry script/binary handed to the tool.
	Entry string

	// Args are extra arguments appended after the entry.
	Args []string

	// OutputDir is created before the child runs if it is missing.
	OutputDir string

	// LogFile is referenced in the failure message so the operator
	// knows where to look.
	LogFile string
}

// Launcher verifies prerequisites, runs the entry as a child process and
// reports the outcome. A non-zero exit code is reported, not interpreted.
type Launcher struct {
	cfg    Config
	logger *slog.Logger
	out    io.Writer

	// lookPath and run are overridable for tests.
	lookPath func(string) (string, error)
	run      func(ctx context.Context, tool string, args []string) (int, error)
}

// New creates a Launcher writing status messages to out.
func New(cfg Config, out io.Writer, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Launcher{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		lookPath: exec.LookPath,
		run:      runChild,
	}
}

// Run performs the launch sequence: tool lookup, entry check, output
// directory creation, child invocation. It returns the child's exit code.
// Prerequisite failures halt before any side effect and return a non-zero
// code with the matching sentinel error.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	tool, err := l.lookPath(l.cfg.Tool)
	if err != nil {
		fmt.Fprintf(l.out, "ERROR: %s not found. Install it and try again.\n", l.cfg.Tool)
		return 1, fmt.Errorf("%w: %s", ErrToolNotFound, l.cfg.Tool)
	}

	if _, err := os.Stat(l.cfg.Entry); err != nil {
		fmt.Fprintf(l.out, "ERROR: %s not found.\n", l.cfg.Entry)
		return 1, fmt.Errorf("%w: %s", ErrEntryNotFound, l.cfg.Entry)
	}

	if l.cfg.OutputDir != "" {
		if err := os.MkdirAll(l.cfg.OutputDir, 0o755); err != nil {
			return 1, fmt.Errorf("create output dir: %w", err)
		}
	}

	args := append([]string{l.cfg.Entry}, l.cfg.Args...)

	l.logger.Info("launching",
		"tool", tool,
		"entry", l.cfg.Entry,
		"output_dir", l.cfg.OutputDir,
	)

	code, err := l.run(ctx, tool, args)
	if err != nil {
		return 1, fmt.Errorf("run %s: %w", l.cfg.Tool, err)
	}

	if code == 0 {
		fmt.Fprintln(l.out, "Analysis completed successfully!")
	} else {
		fmt.Fprintf(l.out, "Analysis failed with code %d. Check %s for details.\n", code, l.cfg.LogFile)
	}

	return code, nil
}

// runChild invokes the tool with inherited stdio and returns its exit code.
// An error is returned only when the process could not be started at all.
func runChild(ctx context.Context, tool string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}
