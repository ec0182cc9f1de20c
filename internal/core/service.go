package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"numatage/internal/estimate"
	"numatage/internal/infra/persistence/memory"
	"numatage/pkg/domain"
)

// Operation names reported to metrics, tracing, and audit.
const (
	OperationEstimate = "estimate"
	OperationGetRun   = "get_run"
	OperationListRuns = "list_runs"

	// StageHaulLevel validates the haul table before any estimator runs.
	StageHaulLevel = "validate_hauls"
	// StageExport writes run artifacts to blob storage.
	StageExport = "export_artifacts"
)

// ratioParent is the hierarchy level the stratified ratio is keyed by. It
// must be SD for the landings scale-up to apply.
const ratioParent = domain.LevelSD

// EstimateRequest carries the RDBES tables for one estimation.
type EstimateRequest struct {
	Label               string
	BiologicalVariables []domain.BiologicalVariable
	Samples             []domain.Sample
	SpeciesSelections   []domain.SpeciesSelection
	// Hauls is the FO table. An empty Level is treated as FO.
	Hauls     domain.HierarchyTable
	Landings  []domain.Landing
	AgeBounds domain.AgeBounds
}

// ArtifactExporter renders a completed run into durable artifacts.
type ArtifactExporter interface {
	Export(ctx context.Context, run domain.RunRecord) ([]domain.Artifact, error)
}

// Service runs estimations and serves stored runs.
type Service struct {
	runs     domain.RunStore
	clock    Clock
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	exporter ArtifactExporter
	newID    func() string
}

// NewService constructs a service persisting to runs.
func NewService(runs domain.RunStore, opts ...Option) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		runs:     runs,
		clock:    o.clock,
		logger:   o.logger,
		audit:    o.audit,
		metrics:  o.metrics,
		tracer:   o.tracer,
		exporter: o.exporter,
		newID:    o.newID,
	}
}

// NewInMemoryService creates a service backed by an in-memory run store.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying run store.
func (s *Service) Store() domain.RunStore {
	return s.runs
}

// Close flushes the logger when it buffers, then releases the run store.
func (s *Service) Close() error {
	if l, ok := s.logger.(interface{ Sync() }); ok {
		l.Sync()
	}
	return s.runs.Close()
}

func newRunID() string {
	return uuid.NewString()
}

type runIDKey struct{}

// ContextWithRunID annotates ctx with the active run identifier.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier set by Estimate, if any.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Estimate executes the full pipeline. The run record is persisted whether
// the pipeline succeeds or not; on failure it carries the error and no
// outputs, and the error is also returned.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (Run, error) {
	run := Run{
		ID:        s.newID(),
		Label:     req.Label,
		Bounds:    req.AgeBounds,
		StartedAt: s.clock.Now(),
	}
	ctx = ContextWithRunID(ctx, run.ID)
	ctx, span := s.tracer.Start(ctx, OperationEstimate)
	s.logger.Info("estimation started", "run_id", run.ID, "label", run.Label,
		"biological_variables", len(req.BiologicalVariables), "samples", len(req.Samples),
		"species_selections", len(req.SpeciesSelections), "hauls", len(req.Hauls.Units), "landings", len(req.Landings))

	err := s.execute(ctx, req, &run)
	if err == nil && s.exporter != nil {
		err = s.export(ctx, &run)
	}
	run.CompletedAt = s.clock.Now()
	if err != nil {
		run = failedRun(run, err)
	} else {
		run.Status = domain.RunStatusSucceeded
	}
	if saveErr := s.runs.SaveRun(ctx, run); saveErr != nil {
		s.logger.Error("run not stored", "run_id", run.ID, "error", saveErr)
		err = errors.Join(err, fmt.Errorf("save run %s: %w", run.ID, saveErr))
	}

	elapsed := run.CompletedAt.Sub(run.StartedAt)
	s.metrics.Observe(ctx, OperationEstimate, err == nil, elapsed)
	span.End(err)
	if err != nil {
		s.recordAudit(ctx, run, AuditStatusError, err, elapsed)
		s.logger.Error("estimation failed", "run_id", run.ID, "error", err)
		return run, err
	}
	s.recordAudit(ctx, run, AuditStatusSuccess, nil, elapsed)
	s.logger.Info("estimation completed", "run_id", run.ID, "ages", len(run.NumAtAge), "duration", elapsed)
	return run, nil
}

func failedRun(run Run, err error) Run {
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	run.HaulTotals = nil
	run.HaulWeights = nil
	run.Ratios = nil
	run.StratumTotals = nil
	run.NumAtAge = nil
	run.Artifacts = nil
	return run
}

func (s *Service) execute(ctx context.Context, req EstimateRequest, run *Run) error {
	hauls, err := haulTable(req.Hauls)
	if err != nil {
		return err
	}

	var countStats, weightStats []StageStat
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		histograms, err := runStage(gctx, s, &countStats, estimate.StageTabulateAges, func() ([]domain.AgeCount, error) {
			return estimate.TabulateAges(req.BiologicalVariables, req.AgeBounds)
		})
		if err != nil {
			return err
		}
		selectionTotals, err := runStage(gctx, s, &countStats, estimate.StageExpandHT, func() ([]domain.AgeTotal, error) {
			return estimate.ExpandHorvitzThompson(req.Samples, histograms)
		})
		if err != nil {
			return err
		}
		run.HaulTotals, err = runStage(gctx, s, &countStats, estimate.StageCensusCounts, func() ([]domain.AgeTotal, error) {
			return estimate.AggregateCensusCounts(req.SpeciesSelections, selectionTotals)
		})
		return err
	})
	g.Go(func() error {
		selectionWeights, err := runStage(gctx, s, &weightStats, estimate.StageTotalWeights, func() ([]domain.UnitWeight, error) {
			return estimate.TotalWeights(req.Samples)
		})
		if err != nil {
			return err
		}
		run.HaulWeights, err = runStage(gctx, s, &weightStats, estimate.StageCensusWeights, func() ([]domain.UnitWeight, error) {
			return estimate.AggregateCensusWeights(req.SpeciesSelections, selectionWeights)
		})
		return err
	})
	err = g.Wait()
	run.Stages = append(append(run.Stages, countStats...), weightStats...)
	if err != nil {
		return err
	}

	var stats []StageStat
	defer func() { run.Stages = append(run.Stages, stats...) }()
	run.Ratios, err = runStage(ctx, s, &stats, estimate.StageStratifiedRatio, func() ([]domain.StratumRatio, error) {
		return estimate.EstimateStratifiedRatio(hauls, ratioParent, run.HaulTotals, run.HaulWeights)
	})
	if err != nil {
		return err
	}
	run.StratumTotals, err = runStage(ctx, s, &stats, estimate.StageScaleByLandings, func() ([]domain.StratumTotal, error) {
		return estimate.ScaleByLandings(run.Ratios, req.Landings)
	})
	if err != nil {
		return err
	}
	run.NumAtAge, err = runStage(ctx, s, &stats, estimate.StageCombineTotals, func() ([]domain.AgeEstimate, error) {
		return estimate.CombineTotals(run.StratumTotals)
	})
	return err
}

func haulTable(table domain.HierarchyTable) (domain.HierarchyTable, error) {
	switch table.Level {
	case "":
		table.Level = domain.LevelFO
		return table, nil
	case domain.LevelFO:
		return table, nil
	default:
		return table, &domain.PreconditionError{Stage: StageHaulLevel, Violation: domain.Violation{
			Check:    "haul_level",
			Category: domain.CategoryUnsupportedDesign,
			Message:  fmt.Sprintf("ratio estimation runs on the FO table, got %s", table.Level),
			Level:    table.Level,
		}}
	}
}

// runStage times, traces, and logs one estimator call, appending its stats
// on success. It refuses to start once ctx is done.
func runStage[T any](ctx context.Context, s *Service, stats *[]StageStat, stage string, fn func() ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, stage)
	started := s.clock.Now()
	out, err := fn()
	elapsed := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, stage, err == nil, elapsed)
	if err != nil {
		s.logger.Warn("stage failed", "run_id", RunIDFromContext(ctx), "stage", stage, "error", err)
		return nil, err
	}
	*stats = append(*stats, StageStat{Stage: stage, Rows: len(out), Duration: float64(elapsed) / float64(time.Millisecond)})
	s.logger.Debug("stage completed", "run_id", RunIDFromContext(ctx), "stage", stage, "rows", len(out))
	return out, nil
}

func (s *Service) export(ctx context.Context, run *Run) error {
	ctx, span := s.tracer.Start(ctx, StageExport)
	started := s.clock.Now()
	snapshot := *run
	snapshot.Status = domain.RunStatusSucceeded
	artifacts, err := s.exporter.Export(ctx, snapshot)
	elapsed := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, StageExport, err == nil, elapsed)
	if err != nil {
		return fmt.Errorf("%s: %w", StageExport, err)
	}
	run.Artifacts = artifacts
	run.Stages = append(run.Stages, StageStat{Stage: StageExport, Rows: len(artifacts), Duration: float64(elapsed) / float64(time.Millisecond)})
	s.logger.Debug("artifacts exported", "run_id", run.ID, "artifacts", len(artifacts))
	return nil
}

func (s *Service) recordAudit(ctx context.Context, run Run, status AuditStatus, err error, elapsed time.Duration) {
	entry := AuditEntry{
		Operation:  OperationEstimate,
		Status:     status,
		RunID:      run.ID,
		Label:      run.Label,
		Duration:   elapsed,
		OccurredAt: run.CompletedAt,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// GetRun returns a stored run or ErrNotFound.
func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	ctx, span := s.tracer.Start(ctx, OperationGetRun)
	started := s.clock.Now()
	run, ok, err := s.runs.GetRun(ctx, id)
	if err == nil && !ok {
		err = ErrNotFound{Entity: "run", ID: id}
	}
	s.metrics.Observe(ctx, OperationGetRun, err == nil, s.clock.Now().Sub(started))
	span.End(err)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns every stored run ordered by start time.
func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	ctx, span := s.tracer.Start(ctx, OperationListRuns)
	started := s.clock.Now()
	runs, err := s.runs.ListRuns(ctx)
	s.metrics.Observe(ctx, OperationListRuns, err == nil, s.clock.Now().Sub(started))
	span.End(err)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
