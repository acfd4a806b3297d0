package crawler

import (
	"sync/atomic"
	"time"

	"twgraph/pkg/storage"
)

// RunStatistics carries the process-lifetime request counters. It satisfies
// the gateway's StatsRecorder, so every issue/resolve event lands here. The
// counters are atomic only because the metrics endpoint may read them from
// another goroutine; the crawl itself writes from a single control flow.
type RunStatistics struct {
	startedAt time.Time

	requestsIssued          atomic.Uint64
	requestsWithoutCooldown atomic.Uint64
	requestsResolved        atomic.Uint64
}

// NewRunStatistics starts a fresh counter set
func NewRunStatistics() *RunStatistics {
	return &RunStatistics{startedAt: time.Now()}
}

// RequestIssued records one HTTP round-trip
func (s *RunStatistics) RequestIssued() {
	s.requestsIssued.Add(1)
}

// RequestWithoutCooldown records a call that resolved with no rate-limit
// detour
func (s *RunStatistics) RequestWithoutCooldown() {
	s.requestsWithoutCooldown.Add(1)
}

// RequestResolved records a call that resolved to a payload or a classified
// sentinel
func (s *RunStatistics) RequestResolved() {
	s.requestsResolved.Add(1)
}

// RequestsIssued returns the round-trip count so far
func (s *RunStatistics) RequestsIssued() uint64 {
	return s.requestsIssued.Load()
}

// Snapshot freezes the counters into the persisted statistics document
func (s *RunStatistics) Snapshot(usersByDisposition map[string]int) *storage.RunStatsDocument {
	return &storage.RunStatsDocument{
		RequestsIssued:          s.requestsIssued.Load(),
		RequestsWithoutCooldown: s.requestsWithoutCooldown.Load(),
		RequestsResolved:        s.requestsResolved.Load(),
		UsersByDisposition:      usersByDisposition,
		StartedAt:               s.startedAt,
		FinishedAt:              time.Now(),
	}
}
