package pipeline

import (
	"testing"
	"time"
)

func TestParseStats_Percentiles(t *testing.T) {
	stats := NewParseStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms)*time.Millisecond, 2)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.Directives != 10 {
		t.Errorf("expected 10 directives, got %d", snap.Directives)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Errorf("expected min=100 max=500, got min=%v max=%v", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Errorf("expected avg=300, got %v", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Errorf("expected p50=300, got %v", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Errorf("expected p95=480, got %v", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Errorf("expected p99=496, got %v", snap.P99Ms)
	}
}

func TestParseStats_WindowPrunes(t *testing.T) {
	now := time.Now()
	stats := NewParseStats(time.Minute)
	stats.now = func() time.Time { return now }

	stats.Record(100*time.Millisecond, 1)
	now = now.Add(2 * time.Minute)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200*time.Millisecond, 0)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected single 200ms sample, got %+v", snap)
	}
}

func TestParseStats_NegativeDurationClamped(t *testing.T) {
	stats := NewParseStats(0)
	stats.Record(-time.Second, 0)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected one clamped sample, got %+v", snap)
	}
}

func TestParseStats_Empty(t *testing.T) {
	if snap := NewParseStats(time.Hour).Snapshot(); snap != (StatsSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}
