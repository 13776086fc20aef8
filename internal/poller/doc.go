// Package poller implements the REST quote poller.
//
// The quote poller:
//   - Fetches consolidated quotes on a fixed interval
//   - Batches symbols into one request per chunk
//   - Bounds concurrent requests with a semaphore
//   - Hands converted quotes to a QuoteHandler
package poller
