// launch verifies the analysis tool and entry file exist, ensures the
// output directory is present, runs the entry as a child process and
// propagates its exit code.
// Usage: go run ./cmd/launch --config configs/monitor.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/launcher"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	flag.Parse()

	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	l := launcher.New(launcher.Config{
		Tool:      cfg.Launch.Tool,
		Entry:     cfg.Launch.Entry,
		Args:      cfg.Launch.Args,
		OutputDir: cfg.Launch.OutputDir,
		LogFile:   cfg.Launch.LogFile,
	}, os.Stdout, logger)

	code, err := l.Run(ctx)
	if err != nil {
		logger.Warn("launch failed", "error", err)
	}
	os.Exit(code)
}
