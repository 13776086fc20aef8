package analyzer

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

func writeTrades(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write trades file: %v", err)
	}
	return path
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

	want := filepath.Join(dir, "Trades_29.08.2025.csv")
	if err := os.WriteFile(want, []byte("Price;Amount\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindFile(dir, day, "")
	if err != nil {
		t.Fatalf("FindFile failed: %v", err)
	}
	if got != want {
		t.Errorf("FindFile = %q, want %q", got, want)
	}
}

func TestFindFileMissing(t *testing.T) {
	_, err := FindFile(t.TempDir(), time.Now(), "")
	if !errors.Is(err, ErrNoTradesFile) {
		t.Errorf("err = %v, want ErrNoTradesFile", err)
	}
}

func TestLoadSemicolon(t *testing.T) {
	path := writeTrades(t, "t.csv", []byte("Symbol;Price;Amount\nSIU5;91250.5;2\nSIU5;91300.0;1\n"))

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(table.Headers) != 3 {
		t.Fatalf("headers = %v, want 3 columns", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Separator != ';' {
		t.Errorf("Separator = %q, want ';'", table.Separator)
	}
}

func TestLoadUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Price,Amount\n100.0,1\n")...)
	path := writeTrades(t, "t.csv", data)

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Headers[0] != "Price" {
		t.Errorf("first header = %q, want Price (BOM stripped)", table.Headers[0])
	}
}

func TestLoadCP1251(t *testing.T) {
	enc := charmap.Windows1251.NewEncoder()
	data, err := enc.Bytes([]byte("Инструмент;Price;Amount\nСбербанк;305.5;10\n"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeTrades(t, "t.csv", data)

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Headers[0] != "Инструмент" {
		t.Errorf("first header = %q, want Инструмент", table.Headers[0])
	}
	if table.Rows[0][0] != "Сбербанк" {
		t.Errorf("first cell = %q, want Сбербанк", table.Rows[0][0])
	}
}

func TestLoadSlashSplit(t *testing.T) {
	// Single physical column: header and values joined with '/'.
	// The parser first sees one column and falls back to manual split.
	path := writeTrades(t, "t.csv", []byte("Symbol/Price/Amount\nSIU5/91250.5/2\nSIU5/91300.0/1\n"))

	table, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(table.Headers) != 3 {
		t.Fatalf("headers = %v, want 3 columns", table.Headers)
	}
	if table.Rows[0][1] != "91250.5" {
		t.Errorf("Price cell = %q, want 91250.5", table.Rows[0][1])
	}
}

func TestLoadEmpty(t *testing.T) {
	path := writeTrades(t, "t.csv", []byte("   \n"))
	if _, err := Load(path, nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("err = %v, want ErrEmptyFile", err)
	}
}

func TestAnalyzeVWAP(t *testing.T) {
	table := &Table{
		Headers: []string{"Symbol", "Price", "Amount"},
		Rows: [][]string{
			{"SIU5", "100", "2"},
			{"SIU5", "110", "3"},
			{"SIU5", "120", "5"},
		},
	}

	report := Analyze(table)

	if report.TotalTrades != 3 {
		t.Errorf("TotalTrades = %d, want 3", report.TotalTrades)
	}
	if !report.HasWeighted {
		t.Fatal("expected weighted figures")
	}

	// VWAP = (100*2 + 110*3 + 120*5) / 10 = 1130/10
	if !almostEqual(report.VWAP, 113.0) {
		t.Errorf("VWAP = %v, want 113.0", report.VWAP)
	}
	if !almostEqual(report.TotalVolume, 10) {
		t.Errorf("TotalVolume = %v, want 10", report.TotalVolume)
	}
	if !almostEqual(report.TotalTurnover, 1130) {
		t.Errorf("TotalTurnover = %v, want 1130", report.TotalTurnover)
	}

	// Weighted amount = Σ(A*P)/ΣP = 1130/330
	if !almostEqual(report.WeightedAvgAmount, 1130.0/330.0) {
		t.Errorf("WeightedAvgAmount = %v, want %v", report.WeightedAvgAmount, 1130.0/330.0)
	}
}

func TestAnalyzeSimpleAverages(t *testing.T) {
	table := &Table{
		Headers: []string{"Symbol", "Price", "Fee"},
		Rows: [][]string{
			{"SIU5", "100", "0.5"},
			{"SIU5", "200", "1.5"},
		},
	}

	report := Analyze(table)

	want := map[string]float64{"Price": 150, "Fee": 1}
	if len(report.Averages) != 2 {
		t.Fatalf("Averages = %+v, want 2 entries", report.Averages)
	}
	for _, avg := range report.Averages {
		expected, ok := want[avg.Column]
		if !ok {
			t.Errorf("unexpected numeric column %q", avg.Column)
			continue
		}
		if !almostEqual(avg.Mean, expected) {
			t.Errorf("avg %s = %v, want %v", avg.Column, avg.Mean, expected)
		}
	}

	// Symbol is not numeric, no weighted stats without Amount.
	if report.HasWeighted {
		t.Error("HasWeighted = true without Amount column")
	}
}

func TestAnalyzeDecimalComma(t *testing.T) {
	table := &Table{
		Headers: []string{"Price", "Amount"},
		Rows: [][]string{
			{"100,5", "2"},
			{"101,5", "2"},
		},
	}

	report := Analyze(table)
	if !report.HasWeighted {
		t.Fatal("expected weighted figures for decimal-comma cells")
	}
	if !almostEqual(report.VWAP, 101.0) {
		t.Errorf("VWAP = %v, want 101.0", report.VWAP)
	}
}

func TestAnalyzeSkipsBadRows(t *testing.T) {
	table := &Table{
		Headers: []string{"Price", "Amount"},
		Rows: [][]string{
			{"100", "2"},
			{"oops", "3"},
			{"", ""},
		},
	}

	report := Analyze(table)
	if !almostEqual(report.TotalVolume, 2) {
		t.Errorf("TotalVolume = %v, want 2 (bad rows skipped)", report.TotalVolume)
	}
}

func TestPrint(t *testing.T) {
	report := Report{
		SourceFile:        "/tmp/Trades_29.08.2025.csv",
		TotalTrades:       3,
		HasWeighted:       true,
		VWAP:              113.0,
		WeightedAvgAmount: 3.42,
		TotalVolume:       10,
		TotalTurnover:     1130,
		Averages: []ColumnAverage{
			{Column: "Price", Mean: 110, Count: 3},
		},
	}

	var buf bytes.Buffer
	Print(&buf, report)

	out := buf.String()
	for _, want := range []string{"Trades_29.08.2025.csv", "VWAP", "113.0000", "Total trades:  3"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}
