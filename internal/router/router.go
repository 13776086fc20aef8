package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Progress-collab/trades-analyzer/internal/connection"
	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// Router parses raw WebSocket payloads and routes them to typed buffers.
type Router interface {
	// Start begins routing messages from the input channel.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the router.
	Stop(ctx context.Context) error

	// Buffers returns output buffers for consumers.
	Buffers() RouterBuffers

	// Stats returns current router statistics.
	Stats() RouterStats
}

// RouterBuffers provides access to output buffers for consumers.
type RouterBuffers struct {
	Books  *GrowableBuffer[model.BookTop]
	Quotes *GrowableBuffer[model.Quote]
}

// RouterStats contains runtime statistics.
type RouterStats struct {
	MessagesReceived int64
	MessagesRouted   int64
	ParseErrors      int64
	EmptyBooks       int64
	BookBuffer       BufferStats
	QuoteBuffer      BufferStats
}

// router is the internal implementation.
type router struct {
	cfg    RouterConfig
	logger *slog.Logger

	// Input from Connection Manager
	input <-chan connection.RawMessage

	// Output buffers
	bookBuf  *GrowableBuffer[model.BookTop]
	quoteBuf *GrowableBuffer[model.Quote]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Stats
	mu          sync.RWMutex
	received    int64
	routed      int64
	parseErrors int64
	emptyBooks  int64
}

// NewRouter creates a new Message Router.
func NewRouter(cfg RouterConfig, input <-chan connection.RawMessage, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &router{
		cfg:      cfg,
		logger:   logger,
		input:    input,
		bookBuf:  NewGrowableBuffer[model.BookTop](cfg.BookBufferSize),
		quoteBuf: NewGrowableBuffer[model.Quote](cfg.QuoteBufferSize),
	}
}

// Start begins routing messages.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started",
		"book_buffer", r.cfg.BookBufferSize,
		"quote_buffer", r.cfg.QuoteBufferSize,
	)

	return nil
}

// Stop gracefully shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	r.logger.Info("stopping message router")

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("message router stopped")
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
	}

	r.bookBuf.Close()
	r.quoteBuf.Close()

	return nil
}

// Buffers returns output buffers for consumers.
func (r *router) Buffers() RouterBuffers {
	return RouterBuffers{
		Books:  r.bookBuf,
		Quotes: r.quoteBuf,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RouterStats{
		MessagesReceived: r.received,
		MessagesRouted:   r.routed,
		ParseErrors:      r.parseErrors,
		EmptyBooks:       r.emptyBooks,
		BookBuffer:       r.bookBuf.Stats(),
		QuoteBuffer:      r.quoteBuf.Stats(),
	}
}

// routeLoop is the main routing goroutine.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case raw, ok := <-r.input:
			if !ok {
				r.logger.Info("input channel closed")
				return
			}
			r.route(raw)
		}
	}
}

// route parses and routes a single message. The subscription kind is
// known from the envelope guid, so no type sniffing is needed.
func (r *router) route(raw connection.RawMessage) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	var sent bool

	switch raw.Kind {
	case connection.KindOrderBook:
		msg, err := parseBookTop(raw)
		if err != nil {
			if errors.Is(err, errEmptyBook) {
				r.mu.Lock()
				r.emptyBooks++
				r.mu.Unlock()
				return
			}
			r.logger.Warn("failed to parse orderbook update",
				"symbol", raw.Symbol,
				"error", err,
			)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		sent = r.bookBuf.Send(msg)

	case connection.KindQuotes:
		msg, err := parseQuote(raw)
		if err != nil {
			r.logger.Warn("failed to parse quote update",
				"symbol", raw.Symbol,
				"error", err,
			)
			r.mu.Lock()
			r.parseErrors++
			r.mu.Unlock()
			return
		}
		sent = r.quoteBuf.Send(msg)

	default:
		r.logger.Debug("skipping message kind", "kind", raw.Kind)
		return
	}

	if sent {
		r.mu.Lock()
		r.routed++
		r.mu.Unlock()
	}
}

// errEmptyBook marks updates with no levels on one side; a crossed or
// empty book carries no usable top.
var errEmptyBook = errors.New("empty book side")

// parseBookTop extracts the best bid and ask from an order book update.
func parseBookTop(raw connection.RawMessage) (model.BookTop, error) {
	var wire bookWire
	if err := json.Unmarshal(raw.Data, &wire); err != nil {
		return model.BookTop{}, err
	}

	if len(wire.Bids) == 0 || len(wire.Asks) == 0 {
		return model.BookTop{}, errEmptyBook
	}

	return model.BookTop{
		Symbol:     raw.Symbol,
		Exchange:   raw.Exchange,
		Bid:        wire.Bids[0].Price,
		BidVolume:  wire.Bids[0].Volume,
		Ask:        wire.Asks[0].Price,
		AskVolume:  wire.Asks[0].Volume,
		Snapshot:   wire.Existing,
		ExchangeTS: wire.MsTimestamp,
		ReceivedAt: raw.ReceivedAt,
	}, nil
}

// parseQuote parses a quote update.
func parseQuote(raw connection.RawMessage) (model.Quote, error) {
	var wire quoteWire
	if err := json.Unmarshal(raw.Data, &wire); err != nil {
		return model.Quote{}, err
	}

	symbol := wire.Symbol
	if symbol == "" {
		symbol = raw.Symbol
	}
	exchange := wire.Exchange
	if exchange == "" {
		exchange = raw.Exchange
	}

	ts := wire.OrderbookTimestamp
	if ts == 0 {
		ts = wire.LastPriceTimestamp * 1000 // seconds → milliseconds
	}

	return model.Quote{
		Symbol:        symbol,
		Exchange:      exchange,
		Bid:           wire.Bid,
		Ask:           wire.Ask,
		LastPrice:     wire.LastPrice,
		Volume:        int64(wire.Volume),
		Change:        wire.Change,
		ChangePercent: wire.ChangePercent,
		ExchangeTS:    ts,
		ReceivedAt:    raw.ReceivedAt,
	}, nil
}
