package pipeline

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates the parse latencies seen within the window.
type StatsSnapshot struct {
	Count      int     `json:"count"`
	Directives int     `json:"directives"`
	MinMs      float64 `json:"min_ms"`
	MaxMs      float64 `json:"max_ms"`
	AvgMs      float64 `json:"avg_ms"`
	P50Ms      float64 `json:"p50_ms"`
	P95Ms      float64 `json:"p95_ms"`
	P99Ms      float64 `json:"p99_ms"`
}

type parseSample struct {
	at         time.Time
	took       time.Duration
	directives int
}

// ParseStats keeps a rolling window of document parse timings.
type ParseStats struct {
	mu      sync.Mutex
	samples []parseSample
	window  time.Duration
	now     func() time.Time
}

func NewParseStats(window time.Duration) *ParseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &ParseStats{
		samples: make([]parseSample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one parse that took d and produced n directive tables.
func (s *ParseStats) Record(d time.Duration, n int) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, parseSample{at: now, took: d, directives: n})
}

func (s *ParseStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	ms := make([]float64, len(s.samples))
	var sum float64
	var directives int
	for i, sm := range s.samples {
		ms[i] = float64(sm.took) / float64(time.Millisecond)
		sum += ms[i]
		directives += sm.directives
	}
	slices.Sort(ms)

	return StatsSnapshot{
		Count:      len(ms),
		Directives: directives,
		MinMs:      ms[0],
		MaxMs:      ms[len(ms)-1],
		AvgMs:      sum / float64(len(ms)),
		P50Ms:      percentile(ms, 50),
		P95Ms:      percentile(ms, 95),
		P99Ms:      percentile(ms, 99),
	}
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm parseSample) bool {
		return sm.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
