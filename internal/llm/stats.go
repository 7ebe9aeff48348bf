package llm

import (
	"slices"
	"sync"
	"time"
)

// Operation names recorded in Stats.
const (
	OpSummary  = "summary"
	OpAnswer   = "qa"
	OpEntities = "ner"
	OpFormula  = "formula"
)

type sample struct {
	at         time.Time
	op         string
	durationMs int64
	failed     bool
}

// Latency aggregates call durations in milliseconds.
type Latency struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// StatsSnapshot is a point-in-time view of the rolling window, overall and
// per operation.
type StatsSnapshot struct {
	Latency
	Operations map[string]Latency `json:"operations,omitempty"`
}

// Stats tracks API attempts within a rolling window. Retried attempts count
// separately.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window, now: time.Now}
}

// Record adds one attempt. Negative durations count as zero.
func (s *Stats) Record(op string, durationMs int64, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)
	s.samples = append(s.samples, sample{at: now, op: op, durationMs: max(durationMs, 0), failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked(s.now())
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	byOp := map[string][]sample{}
	for _, sm := range s.samples {
		byOp[sm.op] = append(byOp[sm.op], sm)
	}
	snap := StatsSnapshot{
		Latency:    summarize(s.samples),
		Operations: make(map[string]Latency, len(byOp)),
	}
	for op, samples := range byOp {
		snap.Operations[op] = summarize(samples)
	}
	return snap
}

// evictLocked drops samples older than the window. Samples are appended in
// time order, so the expired ones form a prefix.
func (s *Stats) evictLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.samples = slices.Delete(s.samples, 0, i)
	}
}

func summarize(samples []sample) Latency {
	values := make([]int64, len(samples))
	var sum int64
	var failed int
	for i, sm := range samples {
		values[i] = sm.durationMs
		sum += sm.durationMs
		if sm.failed {
			failed++
		}
	}
	slices.Sort(values)
	return Latency{
		Count:  len(values),
		Failed: failed,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
