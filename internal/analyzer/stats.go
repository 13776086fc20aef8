package analyzer

import (
	"strconv"
	"strings"
)

// ColumnAverage is the simple mean of one numeric column.
type ColumnAverage struct {
	Column string
	Mean   float64
	Count  int
}

// Report holds the computed statistics for one trades file.
type Report struct {
	SourceFile  string
	TotalTrades int

	Averages []ColumnAverage

	// Weighted figures, present only when both Price and Amount
	// columns parsed.
	HasWeighted       bool
	VWAP              float64
	WeightedAvgAmount float64
	TotalVolume       float64
	TotalTurnover     float64
}

// Analyze computes all statistics for a parsed table.
func Analyze(t *Table) Report {
	report := Report{TotalTrades: len(t.Rows)}

	numeric := numericColumns(t)
	for _, idx := range numeric {
		values := columnValues(t, idx)
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		report.Averages = append(report.Averages, ColumnAverage{
			Column: t.Headers[idx],
			Mean:   sum / float64(len(values)),
			Count:  len(values),
		})
	}

	priceIdx := columnIndex(t, "Price")
	amountIdx := columnIndex(t, "Amount")
	if priceIdx < 0 || amountIdx < 0 {
		return report
	}

	// Rows where both price and amount parse.
	var sumAmount, sumTurnover, sumPrice, sumAmountPrice float64
	pairs := 0
	for _, row := range t.Rows {
		price, okP := parseNumber(row[priceIdx])
		amount, okA := parseNumber(row[amountIdx])
		if !okP || !okA {
			continue
		}
		pairs++
		sumAmount += amount
		sumTurnover += price * amount
		sumPrice += price
		sumAmountPrice += amount * price
	}

	if pairs == 0 {
		return report
	}

	report.TotalVolume = sumAmount
	report.TotalTurnover = sumTurnover

	if sumAmount > 0 {
		report.HasWeighted = true
		report.VWAP = sumTurnover / sumAmount
		if sumPrice > 0 {
			report.WeightedAvgAmount = sumAmountPrice / sumPrice
		}
	}

	return report
}

// numericColumns returns indexes of columns where every non-empty cell
// parses as a number and at least one cell is non-empty.
func numericColumns(t *Table) []int {
	var out []int
	for idx := range t.Headers {
		nonEmpty := 0
		ok := true
		for _, row := range t.Rows {
			cell := strings.TrimSpace(row[idx])
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, parsed := parseNumber(cell); !parsed {
				ok = false
				break
			}
		}
		if ok && nonEmpty > 0 {
			out = append(out, idx)
		}
	}
	return out
}

// columnValues returns the parsed numbers of one column, skipping
// empty and unparseable cells.
func columnValues(t *Table, idx int) []float64 {
	var out []float64
	for _, row := range t.Rows {
		if v, ok := parseNumber(row[idx]); ok {
			out = append(out, v)
		}
	}
	return out
}

// columnIndex finds a header by name, case-insensitively.
func columnIndex(t *Table, name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// parseNumber parses a cell as float64. Broker exports sometimes use a
// decimal comma.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
