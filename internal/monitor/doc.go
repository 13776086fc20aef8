// Package monitor renders live market data to the console and collects
// delivery latency statistics.
//
// The Board keeps the latest bid/ask/last per instrument with change
// indicators against the previous update and redraws a throttled table.
// The latency Collector measures exchange-to-local delay and update
// intervals over a bounded window.
package monitor
