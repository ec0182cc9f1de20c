// Package memory provides an in-memory run store used by default and in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"numatage/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

// Store keeps run records in a map guarded by a RWMutex. Records are deep
// copied on the way in and out so callers never share slices with the store.
type Store struct {
	mu   sync.RWMutex
	runs map[string]domain.RunRecord
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string]domain.RunRecord)}
}

// SaveRun inserts or replaces the record keyed by run.ID.
func (s *Store) SaveRun(_ context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("memory store: run id required")
	}
	cp, err := cloneRun(run)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.runs[run.ID] = cp
	s.mu.Unlock()
	return nil
}

// GetRun returns the record for id and whether it exists.
func (s *Store) GetRun(_ context.Context, id string) (domain.RunRecord, bool, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return domain.RunRecord{}, false, nil
	}
	cp, err := cloneRun(run)
	if err != nil {
		return domain.RunRecord{}, false, err
	}
	return cp, true, nil
}

// ListRuns returns all records ordered by start time then id.
func (s *Store) ListRuns(_ context.Context) ([]domain.RunRecord, error) {
	s.mu.RLock()
	out := make([]domain.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	s.mu.RUnlock()
	for i := range out {
		cp, err := cloneRun(out[i])
		if err != nil {
			return nil, err
		}
		out[i] = cp
	}
	SortRuns(out)
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// SortRuns orders records by StartedAt, breaking ties by ID.
func SortRuns(runs []domain.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}

func cloneRun(run domain.RunRecord) (domain.RunRecord, error) {
	payload, err := json.Marshal(run)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("memory store: encode run %s: %w", run.ID, err)
	}
	var out domain.RunRecord
	if err := json.Unmarshal(payload, &out); err != nil {
		return domain.RunRecord{}, fmt.Errorf("memory store: decode run %s: %w", run.ID, err)
	}
	return out, nil
}
