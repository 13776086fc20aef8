package analyzer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Print writes a report in console form.
func Print(w io.Writer, r Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "TRADES ANALYSIS")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if r.SourceFile != "" {
		fmt.Fprintf(w, "File:          %s\n", filepath.Base(r.SourceFile))
	}
	fmt.Fprintf(w, "Total trades:  %d\n", r.TotalTrades)

	if r.TotalVolume > 0 {
		fmt.Fprintf(w, "Total volume:  %.4f\n", r.TotalVolume)
		fmt.Fprintf(w, "Turnover:      %.2f RUB\n", r.TotalTurnover)
	}

	if len(r.Averages) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SIMPLE AVERAGES")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, avg := range r.Averages {
			fmt.Fprintf(w, "%-20s %14.4f  (%d rows)\n", avg.Column, avg.Mean, avg.Count)
		}
	}

	if r.HasWeighted {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WEIGHTED AVERAGES")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		fmt.Fprintf(w, "%-20s %14.4f RUB\n", "VWAP", r.VWAP)
		fmt.Fprintf(w, "%-20s %14.4f\n", "Weighted amount", r.WeightedAvgAmount)
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
}
