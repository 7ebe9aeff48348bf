package llm

import (
	"testing"
	"time"
)

// fakeClock returns a settable time source for Stats.
func fakeClock(s *Stats) *time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return &now
}

func TestStats_Percentiles(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{500, 100, 400, 200, 300} {
		s.Record(OpSummary, ms, false)
	}

	got := s.Snapshot().Latency
	want := Latency{Count: 5, MinMs: 100, MaxMs: 500, AvgMs: 300, P50Ms: 300, P95Ms: 480, P99Ms: 496}
	if got != want {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestStats_PerOperation(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(OpSummary, 100, false)
	s.Record(OpSummary, 300, true)
	s.Record(OpEntities, 50, false)

	snap := s.Snapshot()
	if snap.Count != 3 || snap.Failed != 1 {
		t.Errorf("overall: %+v", snap.Latency)
	}
	sum := snap.Operations[OpSummary]
	if sum.Count != 2 || sum.Failed != 1 || sum.AvgMs != 200 {
		t.Errorf("summary: %+v", sum)
	}
	if ner := snap.Operations[OpEntities]; ner.Count != 1 || ner.MaxMs != 50 {
		t.Errorf("ner: %+v", ner)
	}
	if _, ok := snap.Operations[OpFormula]; ok {
		t.Error("unused operations are omitted")
	}
}

func TestStats_WindowEviction(t *testing.T) {
	s := NewStats(time.Minute)
	now := fakeClock(s)

	s.Record(OpAnswer, 100, false)
	*now = now.Add(30 * time.Second)
	s.Record(OpAnswer, 200, false)
	*now = now.Add(45 * time.Second)

	snap := s.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected only the fresh sample, got %+v", snap.Latency)
	}

	*now = now.Add(time.Hour)
	if snap := s.Snapshot(); snap.Count != 0 || snap.Operations != nil {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestStats_NegativeDurationClamped(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(OpFormula, -10, false)
	if snap := s.Snapshot(); snap.Count != 1 || snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Errorf("got %+v", snap.Latency)
	}
}
