// Package envsetup prints session environment assignments and appends an
// equivalent block to a shell profile.
//
// The profile append is deliberately not idempotent: every run appends a
// fresh block, duplicates included. Deduplicating would change observable
// behavior the workflow may rely on, so it stays an open question rather
// than a silent fix.
package envsetup

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config names the profile file and the three path values.
type Config struct {
	Profile     string
	ProjectRoot string
	DataDir     string
	DesktopDir  string
}

// Vars maps environment variable names to path values, in a fixed order.
func (c Config) Vars() [][2]string {
	return [][2]string{
		{"TRADES_PROJECT_ROOT", c.ProjectRoot},
		{"TRADES_DATA_DIR", c.DataDir},
		{"TRADES_DESKTOP_DIR", c.DesktopDir},
	}
}

// Block renders the profile assignment block.
func Block(cfg Config) string {
	var b strings.Builder
	b.WriteString("\n# trades-analyzer paths\n")
	for _, v := range cfg.Vars() {
		fmt.Fprintf(&b, "export %s=%q\n", v[0], v[1])
	}
	return b.String()
}

// PrintSession writes export statements for the current session to w.
func PrintSession(w io.Writer, cfg Config) {
	for _, v := range cfg.Vars() {
		fmt.Fprintf(w, "export %s=%q\n", v[0], v[1])
	}
}

// AppendProfile appends the assignment block to the profile file, creating
// the file if it does not exist. Each call appends a new block.
func AppendProfile(cfg Config) error {
	f, err := os.OpenFile(cfg.Profile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(Block(cfg)); err != nil {
		return fmt.Errorf("append profile: %w", err)
	}
	return nil
}
