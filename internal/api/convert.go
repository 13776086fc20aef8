package api

import (
	"time"

	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// ToModel converts an APIQuote to model.Quote. The exchange timestamp is
// taken from the orderbook update when present, otherwise from the last
// trade.
func (q *APIQuote) ToModel(receivedAt time.Time) model.Quote {
	ts := q.OrderbookTimestamp
	if ts == 0 {
		// last_price_timestamp is seconds, not milliseconds
		ts = q.LastPriceTimestamp * 1000
	}

	return model.Quote{
		Symbol:        q.Symbol,
		Exchange:      q.Exchange,
		Bid:           q.Bid,
		Ask:           q.Ask,
		LastPrice:     q.LastPrice,
		Volume:        int64(q.Volume),
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		ExchangeTS:    ts,
		ReceivedAt:    receivedAt,
	}
}
