package core

import (
	"context"
	"sync"
	"time"

	"numatage/pkg/domain"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
	by  time.Duration
}

// Now advances the clock by the configured step on every call.
func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.by)
	return c.now
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
	l.mu.Unlock()
}

func (l *captureLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *captureLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

type observation struct {
	op      string
	success bool
}

type captureMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (m *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	m.obs = append(m.obs, observation{op: op, success: success})
	m.mu.Unlock()
}

func (m *captureMetrics) find(op string) (observation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.obs {
		if o.op == op {
			return o, true
		}
	}
	return observation{}, false
}

type captureAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *captureAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()
}

type failingStore struct {
	domain.RunStore
	err error
}

func (f failingStore) SaveRun(context.Context, domain.RunRecord) error { return f.err }
func (f failingStore) GetRun(context.Context, string) (domain.RunRecord, bool, error) {
	return domain.RunRecord{}, false, f.err
}
func (f failingStore) ListRuns(context.Context) ([]domain.RunRecord, error) { return nil, f.err }
func (f failingStore) Close() error                                        { return nil }

type stubExporter struct {
	artifacts []domain.Artifact
	err       error
	seen      []domain.RunRecord
}

func (e *stubExporter) Export(_ context.Context, run domain.RunRecord) ([]domain.Artifact, error) {
	e.seen = append(e.seen, run)
	return e.artifacts, e.err
}

func intPtr(v int) *int { return &v }

// singleHaulRequest describes one haul in stratum S1 of scheme 1 with one
// sample at inclusion probability 0.5, live weight 2 kg, and ages {2,2,3}.
func singleHaulRequest() EstimateRequest {
	age := func(v string) domain.BiologicalVariable {
		return domain.BiologicalVariable{SAid: 1, Type: domain.TraitAge, Stratification: domain.FlagNo, Value: v}
	}
	return EstimateRequest{
		Label:               "cod-2024-q1",
		BiologicalVariables: []domain.BiologicalVariable{age("2"), age("2"), age("3")},
		Samples: []domain.Sample{{
			SSid: 10, SAid: 1,
			InclusionProb:   domain.Float(0.5),
			Stratification:  domain.FlagNo,
			SpeciesCode:     "126436",
			TotalWeightLive: domain.Float(2),
		}},
		SpeciesSelections: []domain.SpeciesSelection{{FOid: 100, SSid: 10, SelectionMethod: domain.SelectionCensus}},
		Hauls: domain.HierarchyTable{Level: domain.LevelFO, Units: []domain.HierarchyUnit{{
			ID: 100, Stratification: domain.FlagYes, StratumName: "S1", Clustering: domain.FlagNo,
			Parents: map[domain.Level]int64{domain.LevelSD: 1},
		}}},
		Landings:  []domain.Landing{{Stratum: "S1", OfficialWeight: domain.Float(0.5)}},
		AgeBounds: domain.AgeBounds{Min: intPtr(2), Max: intPtr(3)},
	}
}
