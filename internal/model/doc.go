// Package model defines shared data types used across the quote monitor
// and the trades analyzer.
//
// Conventions:
//   - Prices: float64 in the instrument's quote currency (MOEX decimals)
//   - Exchange timestamps: int64 milliseconds since Unix epoch (ms_timestamp)
//   - Local timestamps: time.Time captured when a message is received
//   - Symbols: uppercase board codes (e.g. "SIU5", "PLD-9.25")
package model
