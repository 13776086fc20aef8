package router

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Progress-collab/trades-analyzer/internal/connection"
)

func TestDefaultRouterConfig(t *testing.T) {
	cfg := DefaultRouterConfig()

	if cfg.BookBufferSize != 5000 {
		t.Errorf("BookBufferSize = %d, want 5000", cfg.BookBufferSize)
	}
	if cfg.QuoteBufferSize != 1000 {
		t.Errorf("QuoteBufferSize = %d, want 1000", cfg.QuoteBufferSize)
	}
}

func TestRouter_StartStop(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	cfg := DefaultRouterConfig()
	r := NewRouter(cfg, input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := r.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestRouter_ParseBookTop(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	cfg := DefaultRouterConfig()
	r := NewRouter(cfg, input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	receivedAt := time.Now()
	input <- connection.RawMessage{
		Data:       []byte(`{"bids":[{"price":1120.5,"volume":3},{"price":1120.0,"volume":7}],"asks":[{"price":1121.0,"volume":2}],"ms_timestamp":1756468800123,"existing":true}`),
		Symbol:     "PLD-9.25",
		Exchange:   "MOEX",
		Kind:       connection.KindOrderBook,
		ReceivedAt: receivedAt,
	}

	book, ok := r.Buffers().Books.Receive()
	if !ok {
		t.Fatal("expected book message")
	}

	if book.Symbol != "PLD-9.25" {
		t.Errorf("Symbol = %q, want PLD-9.25", book.Symbol)
	}
	if book.Bid != 1120.5 || book.BidVolume != 3 {
		t.Errorf("top bid = %v x %d, want 1120.5 x 3", book.Bid, book.BidVolume)
	}
	if book.Ask != 1121.0 || book.AskVolume != 2 {
		t.Errorf("top ask = %v x %d, want 1121.0 x 2", book.Ask, book.AskVolume)
	}
	if !book.Snapshot {
		t.Error("expected Snapshot for existing book state")
	}
	if book.ExchangeTS != 1756468800123 {
		t.Errorf("ExchangeTS = %d, want 1756468800123", book.ExchangeTS)
	}
	if !book.ReceivedAt.Equal(receivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", book.ReceivedAt, receivedAt)
	}
}

func TestRouter_ParseQuote(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	cfg := DefaultRouterConfig()
	r := NewRouter(cfg, input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	input <- connection.RawMessage{
		Data:       []byte(`{"symbol":"SBER","exchange":"MOEX","bid":305.1,"ask":305.3,"last_price":305.2,"volume":120500,"change":2.1,"change_percent":0.69,"ob_ms_timestamp":1756468800500}`),
		Symbol:     "SBER",
		Exchange:   "MOEX",
		Kind:       connection.KindQuotes,
		ReceivedAt: time.Now(),
	}

	quote, ok := r.Buffers().Quotes.Receive()
	if !ok {
		t.Fatal("expected quote message")
	}

	if quote.Symbol != "SBER" {
		t.Errorf("Symbol = %q, want SBER", quote.Symbol)
	}
	if quote.Bid != 305.1 || quote.Ask != 305.3 {
		t.Errorf("bid/ask = %v/%v, want 305.1/305.3", quote.Bid, quote.Ask)
	}
	if quote.Volume != 120500 {
		t.Errorf("Volume = %d, want 120500", quote.Volume)
	}
	if quote.ExchangeTS != 1756468800500 {
		t.Errorf("ExchangeTS = %d, want 1756468800500", quote.ExchangeTS)
	}
}

func TestRouter_QuoteTimestampFallback(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	r := NewRouter(DefaultRouterConfig(), input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	input <- connection.RawMessage{
		Data:       []byte(`{"bid":100,"ask":101,"last_price":100.5,"last_price_timestamp":1756468800}`),
		Symbol:     "GAZP",
		Exchange:   "MOEX",
		Kind:       connection.KindQuotes,
		ReceivedAt: time.Now(),
	}

	quote, ok := r.Buffers().Quotes.Receive()
	if !ok {
		t.Fatal("expected quote message")
	}

	// Symbol falls back to the subscription, timestamp converts to ms.
	if quote.Symbol != "GAZP" {
		t.Errorf("Symbol = %q, want GAZP", quote.Symbol)
	}
	if quote.ExchangeTS != 1756468800000 {
		t.Errorf("ExchangeTS = %d, want 1756468800000", quote.ExchangeTS)
	}
}

func TestRouter_EmptyBookSkipped(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	r := NewRouter(DefaultRouterConfig(), input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	input <- connection.RawMessage{
		Data:       []byte(`{"bids":[],"asks":[{"price":101,"volume":1}],"ms_timestamp":1}`),
		Symbol:     "SIU5",
		Exchange:   "MOEX",
		Kind:       connection.KindOrderBook,
		ReceivedAt: time.Now(),
	}

	time.Sleep(50 * time.Millisecond)

	stats := r.Stats()
	if stats.EmptyBooks != 1 {
		t.Errorf("EmptyBooks = %d, want 1", stats.EmptyBooks)
	}
	if stats.MessagesRouted != 0 {
		t.Errorf("MessagesRouted = %d, want 0", stats.MessagesRouted)
	}
	if _, ok := r.Buffers().Books.TryReceive(); ok {
		t.Error("no book message should have been routed")
	}
}

func TestRouter_ParseError(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	r := NewRouter(DefaultRouterConfig(), input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	input <- connection.RawMessage{
		Data:       []byte(`{not json`),
		Symbol:     "SBER",
		Kind:       connection.KindQuotes,
		ReceivedAt: time.Now(),
	}

	time.Sleep(50 * time.Millisecond)

	stats := r.Stats()
	if stats.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", stats.ParseErrors)
	}
}

func TestRouter_Stats(t *testing.T) {
	input := make(chan connection.RawMessage, 10)
	r := NewRouter(DefaultRouterConfig(), input, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	for i := 0; i < 3; i++ {
		input <- connection.RawMessage{
			Data:       []byte(`{"bids":[{"price":100,"volume":1}],"asks":[{"price":101,"volume":1}],"ms_timestamp":5}`),
			Symbol:     "SIU5",
			Exchange:   "MOEX",
			Kind:       connection.KindOrderBook,
			ReceivedAt: time.Now(),
		}
	}

	deadline := time.After(time.Second)
	for {
		stats := r.Stats()
		if stats.MessagesRouted == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("MessagesRouted = %d, want 3", r.Stats().MessagesRouted)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := r.Stats().MessagesReceived; got != 3 {
		t.Errorf("MessagesReceived = %d, want 3", got)
	}
}
