// monitor streams realtime quotes and order-book tops for every listed
// instrument to a live console table, with optional history writers.
// Usage: go run ./cmd/monitor --config configs/monitor.yaml
//
// Required environment variables (a .env file works too):
//
//	ALOR_REFRESH_TOKEN - refresh token from alor.dev
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Progress-collab/trades-analyzer/internal/auth"
	"github.com/Progress-collab/trades-analyzer/internal/config"
	"github.com/Progress-collab/trades-analyzer/internal/connection"
	"github.com/Progress-collab/trades-analyzer/internal/database"
	"github.com/Progress-collab/trades-analyzer/internal/instrument"
	"github.com/Progress-collab/trades-analyzer/internal/model"
	"github.com/Progress-collab/trades-analyzer/internal/monitor"
	"github.com/Progress-collab/trades-analyzer/internal/router"
	"github.com/Progress-collab/trades-analyzer/internal/version"
	"github.com/Progress-collab/trades-analyzer/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/monitor.yaml", "path to config file")
	flag.Parse()

	// .env first so ${ALOR_REFRESH_TOKEN} expands during config load.
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting monitor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

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
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Instrument lists
	registry := instrument.NewRegistry(logger)
	registry.AddFile(model.GroupMOEX, cfg.Instruments.MOEXFile)
	registry.AddFile(model.GroupCrypto, cfg.Instruments.CryptoFile)
	if err := registry.Load(); err != nil {
		logger.Error("failed to load instrument lists", "error", err)
		os.Exit(1)
	}
	instruments := registry.Instruments()
	logger.Info("instruments loaded", "count", len(instruments))

	// Token source
	tokens := auth.NewTokenSource(auth.TokenConfig{
		OAuthURL:     cfg.API.OAuthURL,
		RefreshToken: cfg.API.RefreshToken,
		TTL:          cfg.API.TokenTTL,
		Timeout:      cfg.API.Timeout,
	}, logger)

	// Connection manager
	connCfg := connection.DefaultManagerConfig()
	connCfg.WSURL = cfg.API.WSURL
	connCfg.Depth = cfg.Connection.BookDepth
	connCfg.Frequency = cfg.Connection.Frequency
	connCfg.PingTimeout = cfg.Connection.PingTimeout
	connCfg.WriteTimeout = cfg.Connection.WriteTimeout
	connCfg.SubscribeTimeout = cfg.Connection.SubscribeTimeout
	connCfg.ReconnectBaseWait = cfg.Connection.ReconnectBaseDelay
	connCfg.ReconnectMaxWait = cfg.Connection.ReconnectMaxDelay
	connCfg.BufferSize = cfg.Connection.BufferSize

	connMgr := connection.NewManager(connCfg, tokens, logger)

	// Router
	rtr := router.NewRouter(router.DefaultRouterConfig(), connMgr.Messages(), logger)

	// Optional history writers
	var quoteWriter *writer.QuoteWriter
	var bookWriter *writer.BookWriter
	var wQuotes *router.GrowableBuffer[model.Quote]
	var wBooks *router.GrowableBuffer[model.BookTop]

	if cfg.Database.History.Host != "" {
		pool, err := database.Connect(ctx, cfg.Database.History)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("history database connected", "host", cfg.Database.History.Host)

		wCfg := writer.WriterConfig{
			BatchSize:     cfg.Writers.BatchSize,
			FlushInterval: cfg.Writers.FlushInterval,
		}
		wQuotes = router.NewGrowableBuffer[model.Quote](cfg.Writers.BufferSize)
		wBooks = router.NewGrowableBuffer[model.BookTop](cfg.Writers.BufferSize)
		quoteWriter = writer.NewQuoteWriter(wCfg, wQuotes, pool, logger)
		bookWriter = writer.NewBookWriter(wCfg, wBooks, pool, logger)
	}

	if err := connMgr.Start(ctx); err != nil {
		logger.Error("failed to start connection manager", "error", err)
		os.Exit(1)
	}
	if err := rtr.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}
	if quoteWriter != nil {
		quoteWriter.Start(ctx)
		bookWriter.Start(ctx)
	}

	// Subscribe everything: order book + quotes per instrument.
	for _, inst := range instruments {
		if err := connMgr.Subscribe(ctx, inst, connection.KindOrderBook); err != nil {
			logger.Warn("orderbook subscribe failed", "symbol", inst.Symbol, "error", err)
		}
		if err := connMgr.Subscribe(ctx, inst, connection.KindQuotes); err != nil {
			logger.Warn("quotes subscribe failed", "symbol", inst.Symbol, "error", err)
		}
	}

	board := monitor.NewBoard(monitor.BoardConfig{
		DisplayEvery: cfg.Monitor.DisplayEvery,
		ClearScreen:  true,
	}, os.Stdout)
	latency := monitor.NewCollector()

	buffers := rtr.Buffers()
	go consumeBooks(ctx, buffers.Books, board, latency, wBooks)
	go consumeQuotes(ctx, buffers.Quotes, board, latency, wQuotes)

	// Redraw on a timer so a quiet feed still shows the latest state.
	go func() {
		ticker := time.NewTicker(cfg.Monitor.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				board.Render()
			}
		}
	}()

	// Periodic stats
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rs := rtr.Stats()
				cs := connMgr.Stats()
				logger.Info("stats",
					"connected", cs.Connected,
					"subscriptions", cs.Subscriptions,
					"reconnects", cs.Reconnects,
					"received", rs.MessagesReceived,
					"routed", rs.MessagesRouted,
					"parse_errors", rs.ParseErrors,
				)
			}
		}
	}()

	logger.Info("monitor running - press Ctrl+C to stop")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	if quoteWriter != nil {
		quoteWriter.Stop(shutdownCtx)
		bookWriter.Stop(shutdownCtx)
	}
	rtr.Stop(shutdownCtx)
	connMgr.Stop(shutdownCtx)

	board.Summary()
	printLatency(latency.Stats())

	logger.Info("monitor stopped")
}

func consumeBooks(
	ctx context.Context,
	in *router.GrowableBuffer[model.BookTop],
	board *monitor.Board,
	latency *monitor.Collector,
	history *router.GrowableBuffer[model.BookTop],
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b, ok := in.TryReceive()
			if !ok {
				time.Sleep(5 * time.Millisecond)
				continue
			}

			board.Update(b.Symbol, b.Bid, b.Ask, 0, b.ExchangeTS)
			latency.Record(b.Symbol, b.ExchangeTS, b.ReceivedAt)
			if history != nil {
				history.Send(b)
			}
		}
	}
}

func consumeQuotes(
	ctx context.Context,
	in *router.GrowableBuffer[model.Quote],
	board *monitor.Board,
	latency *monitor.Collector,
	history *router.GrowableBuffer[model.Quote],
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			q, ok := in.TryReceive()
			if !ok {
				time.Sleep(5 * time.Millisecond)
				continue
			}

			board.Update(q.Symbol, q.Bid, q.Ask, q.LastPrice, q.ExchangeTS)
			latency.Record(q.Symbol, q.ExchangeTS, q.ReceivedAt)
			if history != nil {
				history.Send(q)
			}
		}
	}
}

func printLatency(s monitor.LatencyStats) {
	if s.Count == 0 {
		return
	}
	slog.Info("latency summary",
		"samples", s.Count,
		"min", s.Min,
		"max", s.Max,
		"mean", s.Mean,
		"median", s.Median,
		"updates_per_sec", s.PerSecond,
	)
}
