package api

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// GetQuotes fetches quotes for a batch of symbols in a single request.
// Symbols without a matching instrument are absent from the result.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) ([]APIQuote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	parts := make([]string, len(symbols))
	for i, sym := range symbols {
		parts[i] = c.exchange + ":" + sym
	}

	var quotes []APIQuote
	path := "/md/v2/" + strings.Join(parts, ",") + "/quotes"
	if err := c.get(ctx, path, nil, &quotes); err != nil {
		return nil, fmt.Errorf("get quotes: %w", err)
	}

	return quotes, nil
}

// GetQuote fetches the quote for a single symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*APIQuote, error) {
	quotes, err := c.GetQuotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("get quote %s: no data", symbol)
	}
	return &quotes[0], nil
}

// GetServerTime returns the exchange server time.
func (c *Client) GetServerTime(ctx context.Context) (time.Time, error) {
	var resp ServerTimeResponse
	if err := c.get(ctx, "/md/v2/time", nil, &resp); err != nil {
		return time.Time{}, fmt.Errorf("get server time: %w", err)
	}
	return time.Unix(int64(resp), 0), nil
}
