// Package optd is the optimization daemon: an HTTP service that accepts
// problem definitions, executes pipeline runs asynchronously against a
// registered simulator factory, and serves their status and results.
package optd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// RunRecord is the in-memory state of one optimization run.
type RunRecord struct {
	ID              string          `json:"id"`
	Status          RunStatus       `json:"status"`
	Error           string          `json:"error,omitempty"`
	CreatedAtUnixMs int64           `json:"created_at_unix_ms"`
	StartedAtUnixMs int64           `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64           `json:"ended_at_unix_ms,omitempty"`

	Problem *config.Problem  `json:"-"`
	Result  *pipeline.Result `json:"-"`
}

// RunStore holds run records, keyed by run ID.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

// Create registers a new pending run. An empty runID gets a generated one.
func (s *RunStore) Create(runID string, problem *config.Problem) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("run already exists: %s", runID)
	}

	rec := &RunRecord{
		ID:              runID,
		Status:          StatusPending,
		CreatedAtUnixMs: nowUnixMs(),
		Problem:         problem,
	}
	s.runs[runID] = rec
	return rec, nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	return rec, ok
}

// List returns up to limit records, newest first.
func (s *RunStore) List(limit int) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAtUnixMs > out[j].CreatedAtUnixMs
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SetStatus transitions a run and stamps the start/end times.
func (s *RunStore) SetStatus(runID string, status RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}

	switch status {
	case StatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case StatusCompleted, StatusFailed, StatusCancelled:
		rec.EndedAtUnixMs = nowUnixMs()
	}
	return rec, nil
}

// SetResult attaches a finished pipeline result to a run.
func (s *RunStore) SetResult(runID string, result *pipeline.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	rec.Result = result
	return nil
}
