package monitor

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// clearScreen is the ANSI sequence used before each redraw.
const clearScreen = "\033[2J\033[H"

// Row is the display state for one instrument.
type Row struct {
	Symbol    string
	Bid       float64
	Ask       float64
	LastPrice float64

	BidInd  string // "↑", "↓", "=" or " " before the first update
	AskInd  string
	LastInd string

	Updates    int
	UpdatedAt  time.Time
	ExchangeTS int64
}

// Spread returns ask minus bid. Zero-valued sides yield 0.
func (r Row) Spread() float64 {
	if r.Bid == 0 || r.Ask == 0 {
		return 0
	}
	return r.Ask - r.Bid
}

// BoardConfig configures the live table.
type BoardConfig struct {
	// DisplayEvery throttles redraws: the table renders once per this
	// many updates. Minimum 1.
	DisplayEvery int

	// ClearScreen prefixes each render with an ANSI clear.
	ClearScreen bool
}

// Board keeps the latest quote state per instrument for display.
type Board struct {
	cfg BoardConfig
	out io.Writer
	now func() time.Time

	mu      sync.Mutex
	rows    map[string]*Row
	order   []string
	updates int
	started time.Time
}

// NewBoard creates a board writing to out.
func NewBoard(cfg BoardConfig, out io.Writer) *Board {
	if cfg.DisplayEvery < 1 {
		cfg.DisplayEvery = 1
	}
	b := &Board{
		cfg:  cfg,
		out:  out,
		now:  time.Now,
		rows: make(map[string]*Row),
	}
	b.started = b.now()
	return b
}

// indicator compares a value to its previous one.
func indicator(current, previous float64) string {
	switch {
	case previous == 0:
		return " "
	case current > previous:
		return "↑"
	case current < previous:
		return "↓"
	default:
		return "="
	}
}

// Update records new top-of-book values for an instrument and redraws
// the table when the throttle allows. Returns true if a render happened.
func (b *Board) Update(symbol string, bid, ask, last float64, exchangeTS int64) bool {
	b.mu.Lock()

	row, ok := b.rows[symbol]
	if !ok {
		row = &Row{Symbol: symbol}
		b.rows[symbol] = row
		b.order = append(b.order, symbol)
	}

	row.BidInd = indicator(bid, row.Bid)
	row.AskInd = indicator(ask, row.Ask)

	row.Bid = bid
	row.Ask = ask

	// Book updates carry no trade price. Keep the previous last price and
	// its indicator instead of comparing against zero.
	if last != 0 {
		row.LastInd = indicator(last, row.LastPrice)
		row.LastPrice = last
	}
	row.ExchangeTS = exchangeTS
	row.UpdatedAt = b.now()
	row.Updates++

	b.updates++
	render := b.updates%b.cfg.DisplayEvery == 0
	b.mu.Unlock()

	if render {
		b.Render()
	}
	return render
}

// Rows returns a sorted copy of the current display state.
func (b *Board) Rows() []Row {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Row, 0, len(b.rows))
	for _, sym := range b.order {
		out = append(out, *b.rows[sym])
	}
	return out
}

// Updates returns the total number of updates applied.
func (b *Board) Updates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}

// Render draws the full table.
func (b *Board) Render() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.ClearScreen {
		fmt.Fprint(b.out, clearScreen)
	}

	now := b.now()
	fmt.Fprintln(b.out, strings.Repeat("=", 96))
	fmt.Fprintf(b.out, "REALTIME QUOTES  %s  (updates: %d, uptime: %s)\n",
		now.Format("15:04:05"),
		b.updates,
		now.Sub(b.started).Truncate(time.Second),
	)
	fmt.Fprintln(b.out, strings.Repeat("=", 96))
	fmt.Fprintf(b.out, "%-10s %12s %12s %12s %10s %8s %10s\n",
		"Symbol", "Bid", "Ask", "Last", "Spread", "Upd", "Time")
	fmt.Fprintln(b.out, strings.Repeat("-", 96))

	for _, sym := range b.order {
		row := b.rows[sym]
		fmt.Fprintf(b.out, "%-10s %s%11.4f %s%11.4f %s%11.4f %10.4f %8d %10s\n",
			row.Symbol,
			row.BidInd, row.Bid,
			row.AskInd, row.Ask,
			row.LastInd, row.LastPrice,
			row.Spread(),
			row.Updates,
			row.UpdatedAt.Format("15:04:05"),
		)
	}

	fmt.Fprintln(b.out, strings.Repeat("-", 96))
}

// Summary prints per-instrument totals, sorted by update count.
func (b *Board) Summary() {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]*Row, 0, len(b.rows))
	for _, row := range b.rows {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Updates > rows[j].Updates
	})

	elapsed := b.now().Sub(b.started).Seconds()

	fmt.Fprintln(b.out, strings.Repeat("=", 60))
	fmt.Fprintf(b.out, "SESSION SUMMARY (%.0fs, %d updates)\n", elapsed, b.updates)
	fmt.Fprintln(b.out, strings.Repeat("=", 60))
	for _, row := range rows {
		rate := 0.0
		if elapsed > 0 {
			rate = float64(row.Updates) / elapsed
		}
		fmt.Fprintf(b.out, "%-10s %8d updates %8.1f/s\n", row.Symbol, row.Updates, rate)
	}
	fmt.Fprintln(b.out, strings.Repeat("=", 60))
}

