// Package pathscan tests candidate filesystem paths for existence.
// Purely diagnostic, no side effects beyond the report it prints.
package pathscan

import (
	"fmt"
	"io"
	"os"
)

// Result is the existence status of one candidate path.
type Result struct {
	Path   string
	Exists bool
	IsDir  bool
}

// Scan checks every candidate against the filesystem.
func Scan(candidates []string) []Result {
	results := make([]Result, 0, len(candidates))
	for _, p := range candidates {
		r := Result{Path: p}
		if info, err := os.Stat(p); err == nil {
			r.Exists = true
			r.IsDir = info.IsDir()
		}
		results = append(results, r)
	}
	return results
}

// Print writes one checkmark/cross line per result.
func Print(w io.Writer, results []Result) {
	for _, r := range results {
		mark := "✗"
		if r.Exists {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %s\n", mark, r.Path)
	}
}
