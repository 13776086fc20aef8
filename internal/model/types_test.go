package model

import (
	"math"
	"testing"
)

func TestQuoteSpread(t *testing.T) {
	tests := []struct {
		name string
		bid  float64
		ask  float64
		want float64
	}{
		{"normal", 95120.0, 95135.0, 15.0},
		{"tight", 1.2345, 1.2346, 0.0001},
		{"no bid", 0, 95135.0, 0},
		{"no ask", 95120.0, 0, 0},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quote{Bid: tt.bid, Ask: tt.ask}
			if got := q.Spread(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Spread() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookTopSpread(t *testing.T) {
	b := BookTop{Bid: 78.11, Ask: 78.14}
	if got := b.Spread(); math.Abs(got-0.03) > 1e-9 {
		t.Errorf("Spread() = %v, want 0.03", got)
	}

	empty := BookTop{Ask: 78.14}
	if got := empty.Spread(); got != 0 {
		t.Errorf("Spread() with no bid = %v, want 0", got)
	}
}
