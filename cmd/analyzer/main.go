// analyzer computes simple averages, VWAP and totals over a daily trades
// CSV export and prints a console report.
// Usage: go run ./cmd/analyzer [--config configs/monitor.yaml] [--file Trades_16.06.2025.csv] [--date 16.06.2025]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Progress-collab/trades-analyzer/internal/analyzer"
	"github.com/Progress-collab/trades-analyzer/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	file := flag.String("file", "", "trades CSV file (skips date-based discovery)")
	date := flag.String("date", "", "analyze this day instead of today (DD.MM.YYYY)")
	flag.Parse()

	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		// The analyzer works fine on built-in defaults when no config
		// file is present.
		cfg = config.Default()
	}

	path := *file
	if path == "" {
		day := time.Now()
		if *date != "" {
			day, err = time.Parse("02.01.2006", *date)
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad --date %q: expected DD.MM.YYYY\n", *date)
				os.Exit(1)
			}
		}

		path, err = analyzer.FindFile(cfg.Analyzer.TradesDir, day, cfg.Analyzer.FilePattern)
		if err != nil {
			if errors.Is(err, analyzer.ErrNoTradesFile) {
				fmt.Fprintf(os.Stderr, "no trades file for %s in %q\n",
					day.Format("02.01.2006"), cfg.Analyzer.TradesDir)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(1)
		}
	}

	table, err := analyzer.Load(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", path, err)
		os.Exit(1)
	}

	report := analyzer.Analyze(table)
	report.SourceFile = path
	analyzer.Print(os.Stdout, report)
}
