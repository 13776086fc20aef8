package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// TokenSource supplies the JWT carried inside subscription messages.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Manager orchestrates the WebSocket connection and its subscriptions.
type Manager interface {
	// Start establishes the connection and begins reading.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the connection.
	Stop(ctx context.Context) error

	// Subscribe opens a subscription for one instrument and waits for
	// the server's ack.
	Subscribe(ctx context.Context, inst model.Instrument, kind SubscriptionKind) error

	// Unsubscribe cancels the subscription for an instrument.
	Unsubscribe(ctx context.Context, symbol string, kind SubscriptionKind) error

	// Messages returns the channel of data messages for the router.
	Messages() <-chan RawMessage

	// Stats returns current connection and subscription statistics.
	Stats() ManagerStats
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	Connected     bool
	Subscriptions int
	Reconnects    int
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	tokens TokenSource
	logger *slog.Logger

	// client is replaced on reconnect; every access goes through
	// currentClient/swapClient.
	clientMu sync.RWMutex
	client   Client

	// Output channel to the message router
	router chan RawMessage

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Command/response correlation by requestGuid
	pendingMu sync.Mutex
	pending   map[string]chan Ack

	// Active subscriptions keyed by guid. Guids survive reconnects so
	// data envelopes keep resolving to the same instrument.
	subsMu sync.RWMutex
	subs   map[string]*Subscription

	statsMu    sync.Mutex
	reconnects int
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, tokens TokenSource, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cfg:     cfg,
		tokens:  tokens,
		logger:  logger,
		router:  make(chan RawMessage, cfg.MessageBufferSize),
		pending: make(map[string]chan Ack),
		subs:    make(map[string]*Subscription),
	}
}

// Start connects and begins the read loop.
func (m *manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	client := m.newClient()
	if err := client.Connect(m.ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	m.swapClient(client)

	m.wg.Add(1)
	go m.readLoop(client)

	m.logger.Info("connection manager started", "url", m.cfg.WSURL)
	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping connection manager")

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, forcing close")
	}

	if client := m.currentClient(); client != nil {
		client.Close()
	}

	close(m.router)

	m.logger.Info("connection manager stopped")
	return nil
}

// Messages returns the output channel for the message router.
func (m *manager) Messages() <-chan RawMessage {
	return m.router
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.subsMu.RLock()
	subs := len(m.subs)
	m.subsMu.RUnlock()

	m.statsMu.Lock()
	reconnects := m.reconnects
	m.statsMu.Unlock()

	client := m.currentClient()
	connected := client != nil && client.IsConnected()

	return ManagerStats{
		Connected:     connected,
		Subscriptions: subs,
		Reconnects:    reconnects,
	}
}

// Subscribe opens a subscription and waits for the server's ack.
func (m *manager) Subscribe(ctx context.Context, inst model.Instrument, kind SubscriptionKind) error {
	m.subsMu.RLock()
	for _, sub := range m.subs {
		if sub.Symbol == inst.Symbol && sub.Kind == kind {
			m.subsMu.RUnlock()
			return nil
		}
	}
	m.subsMu.RUnlock()

	sub := &Subscription{
		Guid:     uuid.NewString(),
		Symbol:   inst.Symbol,
		Exchange: inst.Exchange,
		Kind:     kind,
	}

	// Register before sending so data arriving ahead of the ack still
	// resolves.
	m.subsMu.Lock()
	m.subs[sub.Guid] = sub
	m.subsMu.Unlock()

	if err := m.sendSubscribe(ctx, m.currentClient(), sub); err != nil {
		m.subsMu.Lock()
		delete(m.subs, sub.Guid)
		m.subsMu.Unlock()
		return err
	}

	m.logger.Debug("subscribed",
		"symbol", sub.Symbol,
		"kind", sub.Kind,
		"guid", sub.Guid,
	)
	return nil
}

// Unsubscribe cancels the subscription for an instrument.
func (m *manager) Unsubscribe(ctx context.Context, symbol string, kind SubscriptionKind) error {
	m.subsMu.RLock()
	var sub *Subscription
	for _, s := range m.subs {
		if s.Symbol == symbol && s.Kind == kind {
			sub = s
			break
		}
	}
	m.subsMu.RUnlock()

	if sub == nil {
		return nil
	}

	token, err := m.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	req := UnsubscribeRequest{
		Opcode: OpUnsubscribe,
		Guid:   sub.Guid,
		Token:  token,
	}

	ack, err := m.sendCommand(ctx, m.currentClient(), sub.Guid, req)
	if err != nil {
		return err
	}
	if !ack.OK() {
		return fmt.Errorf("unsubscribe %s: %d %s", symbol, ack.HTTPCode, ack.Message)
	}

	m.subsMu.Lock()
	delete(m.subs, sub.Guid)
	m.subsMu.Unlock()

	return nil
}

// currentClient returns the active client, which reconnect may replace
// at any moment.
func (m *manager) currentClient() Client {
	m.clientMu.RLock()
	defer m.clientMu.RUnlock()
	return m.client
}

// swapClient installs next as the active client and returns the previous
// one for closing.
func (m *manager) swapClient(next Client) Client {
	m.clientMu.Lock()
	prev := m.client
	m.client = next
	m.clientMu.Unlock()
	return prev
}

func (m *manager) newClient() Client {
	return NewClient(ClientConfig{
		URL:          m.cfg.WSURL,
		PingTimeout:  m.cfg.PingTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.BufferSize,
	}, m.logger)
}

// sendSubscribe builds and sends the subscribe command for a
// subscription, waiting for the ack.
func (m *manager) sendSubscribe(ctx context.Context, client Client, sub *Subscription) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get access token: %w", err)
	}

	req := SubscribeRequest{
		Code:      sub.Symbol,
		Exchange:  sub.Exchange,
		Format:    "Simple",
		Frequency: m.cfg.Frequency,
		Guid:      sub.Guid,
		Token:     token,
	}
	switch sub.Kind {
	case KindOrderBook:
		req.Opcode = OpOrderBookSubscribe
		req.Depth = m.cfg.Depth
	case KindQuotes:
		req.Opcode = OpQuotesSubscribe
	default:
		return fmt.Errorf("unknown subscription kind %q", sub.Kind)
	}

	ack, err := m.sendCommand(ctx, client, sub.Guid, req)
	if err != nil {
		return err
	}
	if !ack.OK() {
		return fmt.Errorf("subscribe %s: %d %s", sub.Symbol, ack.HTTPCode, ack.Message)
	}

	return nil
}

// sendCommand sends a command and waits for the ack correlated by guid.
func (m *manager) sendCommand(ctx context.Context, client Client, guid string, cmd any) (Ack, error) {
	if client == nil {
		return Ack{}, ErrNotConnected
	}

	respCh := make(chan Ack, 1)

	m.pendingMu.Lock()
	m.pending[guid] = respCh
	m.pendingMu.Unlock()

	defer func() {
		m.pendingMu.Lock()
		delete(m.pending, guid)
		m.pendingMu.Unlock()
	}()

	data, err := json.Marshal(cmd)
	if err != nil {
		return Ack{}, fmt.Errorf("marshal command: %w", err)
	}
	if err := client.Send(data); err != nil {
		return Ack{}, err
	}

	select {
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	case <-time.After(m.cfg.SubscribeTimeout):
		return Ack{}, ErrTimeout
	case ack := <-respCh:
		return ack, nil
	}
}

// readLoop reads messages from the connection and routes them.
func (m *manager) readLoop(client Client) {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case err := <-client.Errors():
			m.logger.Warn("connection error", "error", err)
			m.wg.Add(1)
			go m.reconnect()
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}

			// Command acks carry requestGuid, data messages don't.
			if ack, ok := m.tryParseAck(msg.Data); ok {
				m.routeAck(ack)
				continue
			}

			var env DataEnvelope
			if err := json.Unmarshal(msg.Data, &env); err != nil || env.Guid == "" {
				m.logger.Debug("unrecognized message", "data", string(msg.Data))
				continue
			}

			m.subsMu.RLock()
			sub, known := m.subs[env.Guid]
			m.subsMu.RUnlock()
			if !known {
				// Late data from a cancelled subscription.
				continue
			}

			rawMsg := RawMessage{
				Data:       env.Data,
				Symbol:     sub.Symbol,
				Exchange:   sub.Exchange,
				Kind:       sub.Kind,
				ReceivedAt: msg.ReceivedAt,
			}

			select {
			case m.router <- rawMsg:
			case <-m.ctx.Done():
				return
			default:
				m.logger.Warn("message buffer full, dropping", "symbol", sub.Symbol)
			}
		}
	}
}

// tryParseAck attempts to parse a message as a command ack.
func (m *manager) tryParseAck(data []byte) (Ack, bool) {
	if !bytes.Contains(data, []byte(`"requestGuid"`)) {
		return Ack{}, false
	}

	var ack Ack
	if err := json.Unmarshal(data, &ack); err != nil {
		return Ack{}, false
	}
	if ack.RequestGuid == "" {
		return Ack{}, false
	}

	return ack, true
}

// routeAck delivers an ack to the goroutine waiting on it.
func (m *manager) routeAck(ack Ack) {
	m.pendingMu.Lock()
	ch, ok := m.pending[ack.RequestGuid]
	if ok {
		delete(m.pending, ack.RequestGuid)
	}
	m.pendingMu.Unlock()

	if ok {
		select {
		case ch <- ack:
		default:
		}
	}
}

// reconnect re-establishes the connection with exponential backoff and
// replays all active subscriptions.
func (m *manager) reconnect() {
	defer m.wg.Done()

	wait := m.cfg.ReconnectBaseWait
	maxWait := m.cfg.ReconnectMaxWait

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-time.After(wait):
		}

		m.logger.Info("attempting reconnection")

		client := m.newClient()
		if err := client.Connect(m.ctx); err != nil {
			m.logger.Warn("reconnection failed", "error", err)

			wait *= 2
			if wait > maxWait {
				wait = maxWait
			}
			continue
		}

		// Publish the new client only once it is connected, then close
		// the one it replaces.
		if prev := m.swapClient(client); prev != nil {
			prev.Close()
		}

		m.statsMu.Lock()
		m.reconnects++
		m.statsMu.Unlock()

		m.logger.Info("reconnected")

		// Replay subscriptions with their original guids.
		m.subsMu.RLock()
		subs := make([]*Subscription, 0, len(m.subs))
		for _, sub := range m.subs {
			subs = append(subs, sub)
		}
		m.subsMu.RUnlock()

		for _, sub := range subs {
			if err := m.sendSubscribe(m.ctx, client, sub); err != nil {
				m.logger.Warn("resubscribe failed",
					"symbol", sub.Symbol,
					"kind", sub.Kind,
					"error", err,
				)
			}
		}

		m.wg.Add(1)
		go m.readLoop(client)

		return
	}
}
