package router

// RouterConfig holds configuration for the Message Router.
type RouterConfig struct {
	// Output buffer sizes
	BookBufferSize  int // Default: 5000
	QuoteBufferSize int // Default: 1000
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		BookBufferSize:  5000,
		QuoteBufferSize: 1000,
	}
}

// Wire types for JSON parsing. These are the "data" payloads of Alor
// Simple-format envelopes; the manager has already stripped the
// envelope and resolved the guid to an instrument.

// levelWire is one price level of an order book side.
type levelWire struct {
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// bookWire is the payload of an OrderBookGetAndSubscribe update.
type bookWire struct {
	Bids        []levelWire `json:"bids"`
	Asks        []levelWire `json:"asks"`
	MsTimestamp int64       `json:"ms_timestamp"`
	Existing    bool        `json:"existing"`
}

// quoteWire is the payload of a QuotesSubscribe update.
type quoteWire struct {
	Symbol             string  `json:"symbol"`
	Exchange           string  `json:"exchange"`
	Bid                float64 `json:"bid"`
	Ask                float64 `json:"ask"`
	LastPrice          float64 `json:"last_price"`
	LastPriceTimestamp int64   `json:"last_price_timestamp"`
	Volume             float64 `json:"volume"`
	Change             float64 `json:"change"`
	ChangePercent      float64 `json:"change_percent"`
	OrderbookTimestamp int64   `json:"ob_ms_timestamp"`
}
