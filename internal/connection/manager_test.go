package connection

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Progress-collab/trades-analyzer/internal/model"
)

type fakeTokens string

func (f fakeTokens) Token(ctx context.Context) (string, error) {
	return string(f), nil
}

func TestManager_SubscribeAndRoute(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req SubscribeRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}

			if req.Token != "test-jwt" {
				t.Errorf("token = %q, want test-jwt", req.Token)
			}
			if req.Opcode != OpOrderBookSubscribe {
				t.Errorf("opcode = %q, want %q", req.Opcode, OpOrderBookSubscribe)
			}

			ack, _ := json.Marshal(Ack{
				Message:     "Handled successfully",
				HTTPCode:    200,
				RequestGuid: req.Guid,
			})
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				return
			}

			env := []byte(`{"data":{"bids":[{"price":100,"volume":1}],"asks":[{"price":101,"volume":1}],"ms_timestamp":1756468800123},"guid":"` + req.Guid + `"}`)
			if err := conn.WriteMessage(websocket.TextMessage, env); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := DefaultManagerConfig()
	cfg.WSURL = wsURL(server)
	cfg.SubscribeTimeout = 2 * time.Second

	mgr := NewManager(cfg, fakeTokens("test-jwt"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	inst := model.Instrument{Symbol: "PLD-9.25", Exchange: "MOEX", Group: model.GroupMOEX}
	if err := mgr.Subscribe(ctx, inst, KindOrderBook); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case msg := <-mgr.Messages():
		if msg.Symbol != "PLD-9.25" {
			t.Errorf("Symbol = %q, want PLD-9.25", msg.Symbol)
		}
		if msg.Kind != KindOrderBook {
			t.Errorf("Kind = %q, want orderbook", msg.Kind)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("ReceivedAt should be set")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for routed message")
	}

	stats := mgr.Stats()
	if !stats.Connected {
		t.Error("expected Connected")
	}
	if stats.Subscriptions != 1 {
		t.Errorf("Subscriptions = %d, want 1", stats.Subscriptions)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := mgr.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestManager_SubscribeRejected(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req SubscribeRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}

			ack, _ := json.Marshal(Ack{
				Message:     "Invalid JWT",
				HTTPCode:    401,
				RequestGuid: req.Guid,
			})
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := DefaultManagerConfig()
	cfg.WSURL = wsURL(server)
	cfg.SubscribeTimeout = 2 * time.Second

	mgr := NewManager(cfg, fakeTokens("expired"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	inst := model.Instrument{Symbol: "SBER", Exchange: "MOEX"}
	if err := mgr.Subscribe(ctx, inst, KindQuotes); err == nil {
		t.Fatal("expected error for rejected subscribe")
	}

	if got := mgr.Stats().Subscriptions; got != 0 {
		t.Errorf("Subscriptions = %d, want 0 after rejection", got)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	mgr.Stop(stopCtx)
}

func TestManager_ReconnectReplaysSubscriptions(t *testing.T) {
	var conns int32
	subscribes := make(chan string, 10)

	server := mockWSServer(t, func(conn *websocket.Conn) {
		n := atomic.AddInt32(&conns, 1)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req SubscribeRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}
			subscribes <- req.Code

			ack, _ := json.Marshal(Ack{Message: "Handled successfully", HTTPCode: 200, RequestGuid: req.Guid})
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				return
			}

			// The first connection dies right after acking, forcing
			// a reconnect with an active subscription to replay.
			if n == 1 {
				return
			}
		}
	})
	defer server.Close()

	cfg := DefaultManagerConfig()
	cfg.WSURL = wsURL(server)
	cfg.SubscribeTimeout = 2 * time.Second
	cfg.ReconnectBaseWait = 50 * time.Millisecond
	cfg.ReconnectMaxWait = 200 * time.Millisecond

	mgr := NewManager(cfg, fakeTokens("jwt"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Hammer Stats while reconnect swaps the active client underneath.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				mgr.Stats()
			}
		}
	}()

	inst := model.Instrument{Symbol: "SiZ5", Exchange: "MOEX", Group: model.GroupMOEX}
	if err := mgr.Subscribe(ctx, inst, KindOrderBook); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case <-subscribes:
	case <-time.After(2 * time.Second):
		t.Fatal("no subscribe command received")
	}

	// The replayed subscribe arrives on the second connection.
	select {
	case sym := <-subscribes:
		if sym != "SiZ5" {
			t.Errorf("replayed subscribe for %q, want SiZ5", sym)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("subscription was not replayed after reconnect")
	}

	close(stop)
	wg.Wait()

	stats := mgr.Stats()
	if stats.Reconnects < 1 {
		t.Errorf("Reconnects = %d, want >= 1", stats.Reconnects)
	}
	if stats.Subscriptions != 1 {
		t.Errorf("Subscriptions = %d, want 1", stats.Subscriptions)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	mgr.Stop(stopCtx)
}

func TestManager_SubscribeIdempotent(t *testing.T) {
	subscribes := make(chan string, 10)

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var req SubscribeRequest
			if err := json.Unmarshal(data, &req); err != nil {
				continue
			}
			subscribes <- req.Code

			ack, _ := json.Marshal(Ack{Message: "Handled successfully", HTTPCode: 200, RequestGuid: req.Guid})
			if err := conn.WriteMessage(websocket.TextMessage, ack); err != nil {
				return
			}
		}
	})
	defer server.Close()

	cfg := DefaultManagerConfig()
	cfg.WSURL = wsURL(server)
	cfg.SubscribeTimeout = 2 * time.Second

	mgr := NewManager(cfg, fakeTokens("jwt"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	inst := model.Instrument{Symbol: "GAZP", Exchange: "MOEX"}
	if err := mgr.Subscribe(ctx, inst, KindOrderBook); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := mgr.Subscribe(ctx, inst, KindOrderBook); err != nil {
		t.Fatalf("second Subscribe failed: %v", err)
	}

	if got := mgr.Stats().Subscriptions; got != 1 {
		t.Errorf("Subscriptions = %d, want 1", got)
	}

	// Only one subscribe command should have reached the server.
	select {
	case <-subscribes:
	case <-time.After(time.Second):
		t.Fatal("no subscribe command received")
	}
	select {
	case sym := <-subscribes:
		t.Errorf("unexpected second subscribe for %s", sym)
	case <-time.After(100 * time.Millisecond):
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	mgr.Stop(stopCtx)
}
