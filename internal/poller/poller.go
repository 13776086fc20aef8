package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Progress-collab/trades-analyzer/internal/api"
	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// InstrumentSource provides symbols to poll.
type InstrumentSource interface {
	Symbols() []string
}

// QuoteHandler receives fetched quotes.
type QuoteHandler interface {
	HandleQuote(quote model.Quote) error
}

// QuoteHandlerFunc is a function adapter for QuoteHandler.
type QuoteHandlerFunc func(model.Quote) error

func (f QuoteHandlerFunc) HandleQuote(q model.Quote) error {
	return f(q)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Poll interval (default: 1s)
	Concurrency int           // Max concurrent requests (default: 4)
	Timeout     time.Duration // Per-request timeout (default: 10s)
	ChunkSize   int           // Symbols per request (default: 20)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		Concurrency: 4,
		Timeout:     10 * time.Second,
		ChunkSize:   20,
	}
}

// Poller periodically fetches consolidated quotes via the REST API.
// Symbols are batched into one request per chunk since the quotes
// endpoint accepts multiple instruments.
type Poller struct {
	cfg         Config
	client      *api.Client
	instruments InstrumentSource
	handler     QuoteHandler
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, client *api.Client, instruments InstrumentSource, handler QuoteHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &Poller{
		cfg:         cfg,
		client:      client,
		instruments: instruments,
		handler:     handler,
		logger:      logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("quote poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
		"chunk_size", p.cfg.ChunkSize,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("quote poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollAll()
		}
	}
}

// pollAll fetches quotes for all instruments, one request per chunk.
func (p *Poller) pollAll() {
	start := time.Now()

	symbols := p.instruments.Symbols()
	if len(symbols) == 0 {
		p.logger.Debug("no instruments to poll")
		return
	}

	chunks := chunkSymbols(symbols, p.cfg.ChunkSize)

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var fetched, errors atomic.Int64

	for _, chunk := range chunks {
		wg.Add(1)
		go func(syms []string) {
			defer wg.Done()

			// Acquire semaphore slot.
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-p.ctx.Done():
				return
			}

			n, err := p.pollChunk(syms)
			if err != nil {
				p.logger.Warn("failed to poll quotes",
					"symbols", len(syms),
					"err", err,
				)
				errors.Add(1)
				return
			}

			fetched.Add(int64(n))
		}(chunk)
	}

	wg.Wait()

	p.logger.Info("poll cycle complete",
		"symbols", len(symbols),
		"fetched", fetched.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// pollChunk fetches and handles quotes for one chunk of symbols.
func (p *Poller) pollChunk(symbols []string) (int, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	quotes, err := p.client.GetQuotes(ctx, symbols)
	if err != nil {
		return 0, err
	}

	receivedAt := time.Now()
	for _, q := range quotes {
		if p.handler == nil {
			continue
		}
		if err := p.handler.HandleQuote(q.ToModel(receivedAt)); err != nil {
			return 0, err
		}
	}

	return len(quotes), nil
}

// chunkSymbols splits symbols into groups of at most size.
func chunkSymbols(symbols []string, size int) [][]string {
	var chunks [][]string
	for len(symbols) > size {
		chunks = append(chunks, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		chunks = append(chunks, symbols)
	}
	return chunks
}
