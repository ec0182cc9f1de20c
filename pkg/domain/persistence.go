package domain

import (
	"context"
	"time"
)

// RunStatus describes the outcome of an estimation run.
type RunStatus string

// Run statuses.
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// AgeBounds optionally fixes the inclusive age range tabulated from biological
// variables. Nil bounds are derived from the observed ages.
type AgeBounds struct {
	Min *int `json:"minAge,omitempty"`
	Max *int `json:"maxAge,omitempty"`
}

// StageStat records the output size of one pipeline stage.
type StageStat struct {
	Stage    string  `json:"stage"`
	Rows     int     `json:"rows"`
	Duration float64 `json:"duration_ms"`
}

// Artifact references one rendered output of a run held in blob storage.
type Artifact struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
	Rows        int    `json:"rows"`
	URL         string `json:"url,omitempty"`
}

// RunRecord captures the inputs summary, intermediate relations, and outputs
// of one estimation run.
type RunRecord struct {
	ID            string         `json:"id"`
	Label         string         `json:"label,omitempty"`
	Status        RunStatus      `json:"status"`
	Error         string         `json:"error,omitempty"`
	Bounds        AgeBounds      `json:"bounds"`
	Stages        []StageStat    `json:"stages,omitempty"`
	HaulTotals    []AgeTotal     `json:"haulTotals,omitempty"`
	HaulWeights   []UnitWeight   `json:"haulWeights,omitempty"`
	Ratios        []StratumRatio `json:"ratios,omitempty"`
	StratumTotals []StratumTotal `json:"stratumTotals,omitempty"`
	NumAtAge      []AgeEstimate  `json:"numAtAge,omitempty"`
	Artifacts     []Artifact     `json:"artifacts,omitempty"`
	StartedAt     time.Time      `json:"startedAt"`
	CompletedAt   time.Time      `json:"completedAt"`
}

// RunStore is a minimal abstraction over durable run-record backends.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	Close() error
}
