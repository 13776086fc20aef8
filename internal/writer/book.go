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

// BookWriter consumes book tops from the router buffer and writes to the
// book_top_history table.
type BookWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from Message Router
	input *router.GrowableBuffer[model.BookTop]

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []bookTopRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewBookWriter creates a new BookWriter.
func NewBookWriter(
	cfg WriterConfig,
	input *router.GrowableBuffer[model.BookTop],
	db *pgxpool.Pool,
	logger *slog.Logger,
) *BookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]bookTopRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming book tops and writing to the database.
func (w *BookWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("book writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *BookWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping book writer")

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
		w.logger.Info("book writer stopped")
	case <-ctx.Done():
		w.logger.Warn("book writer stop timed out")
	}

	// Final flush
	w.flush()

	return nil
}

// Stats returns current metrics.
func (w *BookWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *BookWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			b, ok := w.input.TryReceive()
			if !ok {
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			w.handleBookTop(b)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *BookWriter) flushLoop() {
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

// handleBookTop transforms and adds a book top to the batch.
func (w *BookWriter) handleBookTop(b model.BookTop) {
	row := w.transform(b)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// transform converts a model.BookTop to a bookTopRow.
func (w *BookWriter) transform(b model.BookTop) bookTopRow {
	return bookTopRow{
		Symbol:     b.Symbol,
		Exchange:   b.Exchange,
		Bid:        b.Bid,
		BidVolume:  b.BidVolume,
		Ask:        b.Ask,
		AskVolume:  b.AskVolume,
		Spread:     b.Spread(),
		Snapshot:   b.Snapshot,
		ExchangeTs: b.ExchangeTS,
		ReceivedAt: b.ReceivedAt.UnixMicro(),
	}
}

// flush writes the current batch to the database.
func (w *BookWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]bookTopRow, 0, w.cfg.BatchSize)
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

	w.logger.Debug("flushed book tops",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *BookWriter) batchInsert(rows []bookTopRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO book_top_history (symbol, exchange, bid, bid_volume, ask, ask_volume, spread, snapshot, exchange_ts, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (symbol, exchange_ts) DO NOTHING
		`, r.Symbol, r.Exchange, r.Bid, r.BidVolume, r.Ask, r.AskVolume, r.Spread, r.Snapshot, r.ExchangeTs, r.ReceivedAt)
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
