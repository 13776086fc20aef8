// Package writer implements batched history writers.
//
// Writers:
//   - Quote writer (quote_history table)
//   - Book top writer (book_top_history table)
//
// All writers use append-only semantics (never update, only insert).
// Duplicate rows for the same symbol and exchange timestamp are dropped
// via ON CONFLICT DO NOTHING and counted as conflicts, not errors.
package writer
