package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestGetQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/md/v2/MOEX:SBER,MOEX:GAZP/quotes"; got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
			t.Errorf("Authorization = %q, want Bearer test-jwt", got)
		}

		json.NewEncoder(w).Encode([]APIQuote{
			{Symbol: "SBER", Exchange: "MOEX", Bid: 305.1, Ask: 305.3, LastPrice: 305.2},
			{Symbol: "GAZP", Exchange: "MOEX", Bid: 128.4, Ask: 128.5, LastPrice: 128.45},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, staticTokens("test-jwt"))

	quotes, err := client.GetQuotes(context.Background(), []string{"SBER", "GAZP"})
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if quotes[0].Symbol != "SBER" || quotes[0].Bid != 305.1 {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
}

func TestGetQuotesEmpty(t *testing.T) {
	client := NewClient("http://unused", nil)
	quotes, err := client.GetQuotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetQuotes failed: %v", err)
	}
	if quotes != nil {
		t.Errorf("got %v, want nil", quotes)
	}
}

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]APIQuote{
			{Symbol: "PLD-9.25", Exchange: "MOEX", Bid: 1120, Ask: 1124, LastPrice: 1122},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	quote, err := client.GetQuote(context.Background(), "PLD-9.25")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if quote.Symbol != "PLD-9.25" {
		t.Errorf("symbol = %q, want PLD-9.25", quote.Symbol)
	}
}

func TestGetQuoteNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	if _, err := client.GetQuote(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for empty quote list")
	}
}

func TestRetryOn500(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]APIQuote{{Symbol: "SBER"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil,
		WithRetries(3, time.Millisecond),
	)

	quotes, err := client.GetQuotes(context.Background(), []string{"SBER"})
	if err != nil {
		t.Fatalf("GetQuotes failed after retries: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("got %d quotes, want 1", len(quotes))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestNoRetryOn404(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil,
		WithRetries(3, time.Millisecond),
	)

	_, err := client.GetQuotes(context.Background(), []string{"SBER"})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestAPIErrorIsRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusTooManyRequests, true},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		err := &APIError{StatusCode: tt.status}
		if got := err.IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestGetServerTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/md/v2/time"; got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
		w.Write([]byte("1756600000"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)

	got, err := client.GetServerTime(context.Background())
	if err != nil {
		t.Fatalf("GetServerTime failed: %v", err)
	}
	if want := time.Unix(1756600000, 0); !got.Equal(want) {
		t.Errorf("time = %v, want %v", got, want)
	}
}
