// envsetup prints export assignments for the workflow's path variables
// and appends an equivalent block to the shell profile. Each run appends
// a fresh block; nothing is deduplicated.
// Usage: go run ./cmd/envsetup --config configs/monitor.yaml [--no-profile]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/envsetup"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	noProfile := flag.Bool("no-profile", false, "print session assignments only")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	home, _ := os.UserHomeDir()

	setup := envsetup.Config{
		Profile:     cfg.EnvSetup.Profile,
		ProjectRoot: cfg.EnvSetup.ProjectRoot,
		DataDir:     cfg.EnvSetup.DataDir,
		DesktopDir:  cfg.EnvSetup.DesktopDir,
	}
	if !filepath.IsAbs(setup.Profile) {
		setup.Profile = filepath.Join(home, setup.Profile)
	}
	if setup.ProjectRoot == "" {
		setup.ProjectRoot, _ = os.Getwd()
	}
	if setup.DataDir == "" {
		setup.DataDir = filepath.Join(setup.ProjectRoot, "input")
	}
	if setup.DesktopDir == "" {
		setup.DesktopDir = filepath.Join(home, "Desktop")
	}

	fmt.Println("Session assignments:")
	envsetup.PrintSession(os.Stdout, setup)

	if *noProfile {
		return
	}

	if err := envsetup.AppendProfile(setup); err != nil {
		logger.Error("failed to update profile", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nAppended assignment block to %s\n", setup.Profile)
}
