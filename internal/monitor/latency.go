package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// LatencyStats summarizes collected delay measurements.
type LatencyStats struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration

	// Update interval statistics (time between consecutive receives).
	AvgInterval time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
	PerSecond   float64
}

// Collector accumulates latency samples. Samples without an exchange
// timestamp still count toward interval statistics.
type Collector struct {
	mu      sync.Mutex
	samples []model.LatencySample
	arrival []time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record derives a sample from an update's exchange timestamp and local
// receive time.
func (c *Collector) Record(symbol string, exchangeTS int64, receivedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.arrival = append(c.arrival, receivedAt)

	if exchangeTS == 0 {
		return
	}

	exchangeTime := time.UnixMilli(exchangeTS)
	c.samples = append(c.samples, model.LatencySample{
		Symbol:     symbol,
		ExchangeTS: exchangeTS,
		ReceivedAt: receivedAt,
		Latency:    receivedAt.Sub(exchangeTime),
	})
}

// Count returns the number of timestamped samples collected.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Samples returns a copy of the collected samples.
func (c *Collector) Samples() []model.LatencySample {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.LatencySample, len(c.samples))
	copy(out, c.samples)
	return out
}

// Stats computes summary statistics over everything collected so far.
func (c *Collector) Stats() LatencyStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats LatencyStats
	stats.Count = len(c.samples)

	if len(c.samples) > 0 {
		latencies := make([]time.Duration, len(c.samples))
		var sum time.Duration
		for i, s := range c.samples {
			latencies[i] = s.Latency
			sum += s.Latency
		}
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

		stats.Min = latencies[0]
		stats.Max = latencies[len(latencies)-1]
		stats.Mean = sum / time.Duration(len(latencies))

		mid := len(latencies) / 2
		if len(latencies)%2 == 1 {
			stats.Median = latencies[mid]
		} else {
			stats.Median = (latencies[mid-1] + latencies[mid]) / 2
		}
	}

	if len(c.arrival) >= 2 {
		var sum time.Duration
		minI := time.Duration(1<<63 - 1)
		var maxI time.Duration
		for i := 1; i < len(c.arrival); i++ {
			interval := c.arrival[i].Sub(c.arrival[i-1])
			sum += interval
			if interval < minI {
				minI = interval
			}
			if interval > maxI {
				maxI = interval
			}
		}
		n := len(c.arrival) - 1
		stats.AvgInterval = sum / time.Duration(n)
		stats.MinInterval = minI
		stats.MaxInterval = maxI
		if stats.AvgInterval > 0 {
			stats.PerSecond = float64(time.Second) / float64(stats.AvgInterval)
		}
	}

	return stats
}
