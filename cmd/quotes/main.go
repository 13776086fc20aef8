// quotes prints a one-shot REST snapshot of current quotes for every
// listed instrument, or keeps polling with --watch.
// Usage: go run ./cmd/quotes --config configs/monitor.yaml [--watch]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Progress-collab/trades-analyzer/internal/api"
	"github.com/Progress-collab/trades-analyzer/internal/auth"
	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/instrument"
	"github.com/Progress-collab/trades-analyzer/internal/model"
	"github.com/Progress-collab/trades-analyzer/internal/monitor"
	"github.com/Progress-collab/trades-analyzer/internal/poller"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	watch := flag.Bool("watch", false, "keep polling at the configured interval")
	flag.Parse()

	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
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

	registry := instrument.NewRegistry(logger)
	registry.AddFile(model.GroupMOEX, cfg.Instruments.MOEXFile)
	registry.AddFile(model.GroupCrypto, cfg.Instruments.CryptoFile)
	if err := registry.Load(); err != nil {
		logger.Error("failed to load instrument lists", "error", err)
		os.Exit(1)
	}
	symbols := registry.Symbols()
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "no instruments listed")
		os.Exit(1)
	}

	tokens := auth.NewTokenSource(auth.TokenConfig{
		OAuthURL:     cfg.API.OAuthURL,
		RefreshToken: cfg.API.RefreshToken,
		TTL:          cfg.API.TokenTTL,
		Timeout:      cfg.API.Timeout,
	}, logger)

	client := api.NewClient(cfg.API.RestURL, tokens,
		api.WithExchange(cfg.API.Exchange),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, 0),
		api.WithLogger(logger),
	)

	if !*watch {
		if err := printOnce(ctx, client, symbols); err != nil {
			logger.Error("snapshot failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Watch mode: one redraw per completed sweep over all symbols.
	board := monitor.NewBoard(monitor.BoardConfig{
		DisplayEvery: len(symbols),
		ClearScreen:  true,
	}, os.Stdout)

	handler := poller.QuoteHandlerFunc(func(q model.Quote) error {
		board.Update(q.Symbol, q.Bid, q.Ask, q.LastPrice, q.ExchangeTS)
		return nil
	})

	p := poller.New(poller.Config{
		Interval:    cfg.Poller.Interval,
		Concurrency: cfg.Poller.Concurrency,
		Timeout:     cfg.Poller.Timeout,
	}, client, registry, handler, logger)

	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	p.Stop(context.Background())
	board.Summary()
}

func printOnce(ctx context.Context, client *api.Client, symbols []string) error {
	quotes, err := client.GetQuotes(ctx, symbols)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %12s %12s %12s %10s %12s\n",
		"SYMBOL", "BID", "ASK", "LAST", "CHANGE%", "VOLUME")
	for _, q := range quotes {
		fmt.Printf("%-10s %12.2f %12.2f %12.2f %9.2f%% %12d\n",
			q.Symbol, q.Bid, q.Ask, q.LastPrice, q.ChangePercent, int64(q.Volume))
	}
	fmt.Printf("\n%d instruments\n", len(quotes))
	return nil
}
