package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Progress-collab/trades-analyzer/internal/model"
	"github.com/Progress-collab/trades-analyzer/internal/router"
)

// QuoteWriter consumes quotes from the router buffer and writes to the
// quote_history table.
type QuoteWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from Message Router
	input *router.GrowableBuffer[model.Quote]

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []quoteRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewQuoteWriter creates a new QuoteWriter.
func NewQuoteWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[model.Quote],
	db *pgxpool.Pool,
	logger *slog.Logger,
) *QuoteWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]quoteRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming quotes and writing to the database.
func (w *QuoteWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("quote writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *QuoteWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping quote writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("quote writer stopped")
	case <-ctx.Done():
		w.logger.Warn("quote writer stop timed out")
	}

	// Final flush
	w.flush()

	return nil
}

// Stats returns current metrics.
func (w *QuoteWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *QuoteWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			q, ok := w.input.TryReceive()
			if !ok {
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			w.handleQuote(q)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *QuoteWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleQuote transforms and adds a quote to the batch.
func (w *QuoteWriter) handleQuote(q model.Quote) {
	row := w.transform(q)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform converts a model.Quote to a quoteRow.
func (w *QuoteWriter) transform(q model.Quote) quoteRow {
	return quoteRow{
		Symbol:        q.Symbol,
		Exchange:      q.Exchange,
		Bid:           q.Bid,
		Ask:           q.Ask,
		LastPrice:     q.LastPrice,
		Volume:        q.Volume,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		ExchangeTs:    q.ExchangeTS,
		ReceivedAt:    q.ReceivedAt.UnixMicro(),
	}
}

// flush writes the current batch to the database.
func (w *QuoteWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]quoteRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed quotes",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *QuoteWriter) batchInsert(rows []quoteRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO quote_history (symbol, exchange, bid, ask, last_price, volume, change, change_percent, exchange_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (symbol, exchange_ts) DO NOTHING
		`, r.Symbol, r.Exchange, r.Bid, r.Ask, r.LastPrice, r.Volume, r.Change, r.ChangePercent, r.ExchangeTs, r.ReceivedAt)
	}

	results := w.db.SendBatch(w.ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
