package api

// APIQuote is the wire representation of a quote as returned by
// /md/v2/{EXCHANGE}:{SYMBOL}/quotes.
type APIQuote struct {
	Symbol             string  `json:"symbol"`
	Exchange           string  `json:"exchange"`
	Description        string  `json:"description"`
	Bid                float64 `json:"bid"`
	Ask                float64 `json:"ask"`
	LastPrice          float64 `json:"last_price"`
	LastPriceTimestamp int64   `json:"last_price_timestamp"`
	Volume             float64 `json:"volume"`
	Change             float64 `json:"change"`
	ChangePercent      float64 `json:"change_percent"`
	OrderbookTimestamp int64   `json:"ob_ms_timestamp"`
	OpenPrice          float64 `json:"open_price"`
	HighPrice          float64 `json:"high_price"`
	LowPrice           float64 `json:"low_price"`
	PrevClosePrice     float64 `json:"prev_close_price"`
}

// ServerTimeResponse is the wire representation of /md/v2/time, a Unix
// timestamp in seconds.
type ServerTimeResponse int64
