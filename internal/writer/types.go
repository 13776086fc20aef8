package writer

import (
	"time"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 5 * time.Second,
	}
}

// quoteRow represents a row to be inserted into the quote_history table.
type quoteRow struct {
	Symbol        string
	Exchange      string
	Bid           float64
	Ask           float64
	LastPrice     float64
	Volume        int64
	Change        float64
	ChangePercent float64
	ExchangeTs    int64 // Milliseconds, as delivered by the exchange
	ReceivedAt    int64 // Microseconds
}

// bookTopRow represents a row to be inserted into the book_top_history table.
type bookTopRow struct {
	Symbol     string
	Exchange   string
	Bid        float64
	BidVolume  int64
	Ask        float64
	AskVolume  int64
	Spread     float64
	Snapshot   bool
	ExchangeTs int64 // Milliseconds
	ReceivedAt int64 // Microseconds
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
