// Package connection manages the WebSocket connection to the Alor
// streaming API.
//
// The Connection Manager:
//   - Maintains a single connection carrying all subscriptions
//   - Sends OrderBookGetAndSubscribe / QuotesSubscribe commands with a
//     guid and the JWT embedded in the message
//   - Correlates command acks by requestGuid and data envelopes by guid
//   - Handles reconnection with exponential backoff and replays
//     subscriptions
//   - Routes data messages to the Message Router
package connection
