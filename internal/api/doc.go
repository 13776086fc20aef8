// Package api provides the Alor REST API client for market data.
//
// REST endpoint:
//   - Production: https://api.alor.ru
//
// Quotes are fetched from /md/v2/{EXCHANGE}:{SYMBOL},{EXCHANGE}:{SYMBOL}/quotes,
// which accepts a comma-separated batch of instruments and returns one quote
// per instrument. Requests are authorized with a Bearer JWT obtained from a
// TokenSource.
package api
