// pathscan tests the configured candidate paths for existence and prints
// a checkmark or cross per entry. Diagnostic only.
// Usage: go run ./cmd/pathscan --config configs/monitor.yaml
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/pathscan"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	candidates := cfg.Paths.Candidates
	if len(candidates) == 0 {
		// Default candidates: common project locations relative to home.
		home, _ := os.UserHomeDir()
		candidates = []string{
			home + "/Desktop/trades",
			home + "/Desktop/Kas",
			home + "/trades",
			".",
		}
	}

	fmt.Printf("Checking %d paths:\n\n", len(candidates))
	pathscan.Print(os.Stdout, pathscan.Scan(candidates))
}
