// latency measures exchange-to-local delivery delay over a fixed window:
// subscribe to one or more instruments, collect per-update latency samples
// for N seconds, then print the distribution.
// Usage: go run ./cmd/latency --config configs/monitor.yaml --symbols SIU5 --seconds 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Progress-collab/trades-analyzer/internal/api"
	"github.com/Progress-collab/trades-analyzer/internal/auth"
	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/connection"
	"github.com/Progress-collab/trades-analyzer/internal/model"
	"github.com/Progress-collab/trades-analyzer/internal/monitor"
	"github.com/Progress-collab/trades-analyzer/internal/router"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	symbolsFlag := flag.String("symbols", "SIU5", "comma-separated symbols to measure")
	seconds := flag.Int("seconds", 20, "measurement window in seconds")
	quotes := flag.Bool("quotes", false, "measure the quotes feed instead of the order book")
	flag.Parse()

	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*seconds)*time.Second)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	tokens := auth.NewTokenSource(auth.TokenConfig{
		OAuthURL:     cfg.API.OAuthURL,
		RefreshToken: cfg.API.RefreshToken,
		TTL:          cfg.API.TokenTTL,
		Timeout:      cfg.API.Timeout,
	}, logger)

	// Latency samples compare exchange timestamps against the local
	// clock, so report the server clock skew up front. Resolution is
	// one second, enough to catch a badly drifting host.
	restClient := api.NewClient(cfg.API.RestURL, tokens,
		api.WithExchange(cfg.API.Exchange),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)
	skew, skewErr := measureSkew(ctx, restClient)
	if skewErr != nil {
		logger.Warn("server time unavailable", "error", skewErr)
	}

	connCfg := connection.DefaultManagerConfig()
	connCfg.WSURL = cfg.API.WSURL
	connCfg.Depth = cfg.Connection.BookDepth
	connCfg.Frequency = cfg.Connection.Frequency
	connCfg.SubscribeTimeout = cfg.Connection.SubscribeTimeout

	connMgr := connection.NewManager(connCfg, tokens, logger)
	rtr := router.NewRouter(router.DefaultRouterConfig(), connMgr.Messages(), logger)

	if err := connMgr.Start(ctx); err != nil {
		logger.Error("failed to start connection manager", "error", err)
		os.Exit(1)
	}
	if err := rtr.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}

	kind := connection.KindOrderBook
	if *quotes {
		kind = connection.KindQuotes
	}

	for _, sym := range strings.Split(*symbolsFlag, ",") {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		inst := model.Instrument{Symbol: sym, Exchange: cfg.API.Exchange, Group: model.GroupMOEX}
		if err := connMgr.Subscribe(ctx, inst, kind); err != nil {
			logger.Error("subscribe failed", "symbol", sym, "error", err)
			os.Exit(1)
		}
	}

	collector := monitor.NewCollector()
	buffers := rtr.Buffers()

	logger.Info("measuring", "window", fmt.Sprintf("%ds", *seconds), "kind", string(kind))

	done := ctx.Done()
loop:
	for {
		select {
		case <-done:
			break loop
		default:
		}

		if b, ok := buffers.Books.TryReceive(); ok {
			collector.Record(b.Symbol, b.ExchangeTS, b.ReceivedAt)
			continue
		}
		if q, ok := buffers.Quotes.TryReceive(); ok {
			collector.Record(q.Symbol, q.ExchangeTS, q.ReceivedAt)
			continue
		}
		time.Sleep(time.Millisecond)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	rtr.Stop(shutdownCtx)
	connMgr.Stop(shutdownCtx)

	printReport(collector.Stats(), *seconds, skew, skewErr)
}

// measureSkew estimates local clock offset from the exchange server
// clock. Positive skew means the local clock runs ahead.
func measureSkew(ctx context.Context, client *api.Client) (time.Duration, error) {
	before := time.Now()
	serverTime, err := client.GetServerTime(ctx)
	if err != nil {
		return 0, err
	}
	rtt := time.Since(before)

	local := before.Add(rtt / 2)
	return local.Sub(serverTime).Truncate(time.Millisecond), nil
}

func printReport(s monitor.LatencyStats, seconds int, skew time.Duration, skewErr error) {
	fmt.Printf("\nLATENCY TEST (%ds window)\n", seconds)
	fmt.Println(strings.Repeat("=", 40))

	if skewErr == nil {
		fmt.Printf("Clock skew:     %v (local minus server)\n", skew)
	}

	if s.Count == 0 {
		fmt.Println("No updates with exchange timestamps received.")
		return
	}

	fmt.Printf("Samples:        %d\n", s.Count)
	fmt.Printf("Min latency:    %v\n", s.Min)
	fmt.Printf("Max latency:    %v\n", s.Max)
	fmt.Printf("Mean latency:   %v\n", s.Mean)
	fmt.Printf("Median latency: %v\n", s.Median)
	fmt.Println()
	fmt.Printf("Avg interval:   %v\n", s.AvgInterval)
	fmt.Printf("Min interval:   %v\n", s.MinInterval)
	fmt.Printf("Max interval:   %v\n", s.MaxInterval)
	fmt.Printf("Updates/sec:    %.1f\n", s.PerSecond)
}
