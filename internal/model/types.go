package model

import "time"

// -----------------------------------------------------------------------------
// Instruments
// -----------------------------------------------------------------------------

// Group identifies which instrument list a symbol came from.
type Group string

const (
	// GroupMOEX covers futures and stocks polled on the Moscow Exchange.
	GroupMOEX Group = "moex"

	// GroupCrypto covers identifiers from the crypto instrument list.
	GroupCrypto Group = "crypto"
)

// Instrument is a single entry from an instrument list.
type Instrument struct {
	Symbol   string // Uppercase board code (e.g. "SIU5")
	Exchange string // Exchange code (e.g. "MOEX")
	Group    Group  // Source list
}

// -----------------------------------------------------------------------------
// Market data
// -----------------------------------------------------------------------------

// Quote is a consolidated quote for one instrument.
type Quote struct {
	Symbol   string
	Exchange string

	Bid       float64
	Ask       float64
	LastPrice float64

	Volume        int64   // Accumulated session volume
	Change        float64 // Absolute change vs previous close
	ChangePercent float64

	ExchangeTS int64     // Exchange ms_timestamp (ms since epoch), 0 if absent
	ReceivedAt time.Time // Local receive time
}

// Spread returns ask minus bid. Zero-valued sides yield 0.
func (q Quote) Spread() float64 {
	if q.Bid == 0 || q.Ask == 0 {
		return 0
	}
	return q.Ask - q.Bid
}

// BookTop is the best bid/ask taken from an order book update.
type BookTop struct {
	Symbol   string
	Exchange string

	Bid       float64
	BidVolume int64
	Ask       float64
	AskVolume int64

	Snapshot   bool      // True if the update carried full book state
	ExchangeTS int64     // Exchange ms_timestamp (ms since epoch), 0 if absent
	ReceivedAt time.Time // Local receive time
}

// Spread returns ask minus bid. Zero-valued sides yield 0.
func (b BookTop) Spread() float64 {
	if b.Bid == 0 || b.Ask == 0 {
		return 0
	}
	return b.Ask - b.Bid
}

// LatencySample is one exchange-to-local delivery delay measurement.
type LatencySample struct {
	Symbol     string
	ExchangeTS int64         // ms since epoch
	ReceivedAt time.Time     // Local receive time
	Latency    time.Duration // ReceivedAt minus exchange time
}
