package connection

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no pong)")
	ErrTimeout         = errors.New("operation timeout")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Subscription opcodes understood by the Alor WebSocket API.
const (
	OpOrderBookSubscribe = "OrderBookGetAndSubscribe"
	OpQuotesSubscribe    = "QuotesSubscribe"
	OpUnsubscribe        = "unsubscribe"
)

// SubscriptionKind identifies what a subscription delivers.
type SubscriptionKind string

const (
	KindOrderBook SubscriptionKind = "orderbook"
	KindQuotes    SubscriptionKind = "quotes"
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// RawMessage is a data message from Connection Manager to Message Router.
// The manager resolves the envelope guid to the subscribed instrument
// before forwarding.
type RawMessage struct {
	Data       []byte           // Payload bytes ("data" object from the envelope)
	Symbol     string           // Instrument the subscription belongs to
	Exchange   string           // Exchange of the instrument
	Kind       SubscriptionKind // orderbook or quotes
	ReceivedAt time.Time        // Local timestamp when WS Client received message
}

// SubscribeRequest is a subscription command. The JWT rides inside the
// message, not in a header.
type SubscribeRequest struct {
	Opcode    string `json:"opcode"`
	Code      string `json:"code"`
	Depth     int    `json:"depth,omitempty"`
	Exchange  string `json:"exchange"`
	Format    string `json:"format"`
	Frequency int    `json:"frequency"`
	Guid      string `json:"guid"`
	Token     string `json:"token"`
}

// UnsubscribeRequest cancels a subscription by guid.
type UnsubscribeRequest struct {
	Opcode string `json:"opcode"`
	Guid   string `json:"guid"`
	Token  string `json:"token"`
}

// Ack is the server's response to a command, correlated by requestGuid.
type Ack struct {
	Message     string `json:"message"`
	HTTPCode    int    `json:"httpCode"`
	RequestGuid string `json:"requestGuid"`
}

// OK reports whether the command was accepted.
func (a *Ack) OK() bool {
	return a.HTTPCode == 200
}

// DataEnvelope is a data message from the server. Data holds the
// payload whose shape depends on the subscription opcode.
type DataEnvelope struct {
	Data json.RawMessage `json:"data"`
	Guid string          `json:"guid"`
}

// Subscription tracks an active subscription.
type Subscription struct {
	Guid     string
	Symbol   string
	Exchange string
	Kind     SubscriptionKind
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., wss://api.alor.ru/ws)
	PingTimeout  time.Duration // Max time without pong before considering connection stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   10000,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	WSURL             string        // WebSocket URL
	Depth             int           // Orderbook depth for subscriptions
	Frequency         int           // Server-side throttle in ms (0 = every update)
	PingTimeout       time.Duration // Max time without pong before reconnecting
	WriteTimeout      time.Duration // Write deadline for sends
	SubscribeTimeout  time.Duration // Timeout for subscribe commands
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
	MessageBufferSize int           // Buffer size for output message channel
	BufferSize        int           // Per-connection receive buffer size
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Depth:             20,
		Frequency:         0,
		PingTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Second,
		SubscribeTimeout:  10 * time.Second,
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
		MessageBufferSize: 100000,
		BufferSize:        10000,
	}
}
