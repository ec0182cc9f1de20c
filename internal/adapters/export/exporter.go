// Package export renders run outputs as CSV and JSON artifacts and writes
// them to a blob store.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	blob "numatage/internal/blob/core"
	"numatage/pkg/domain"
)

// Artifact names.
const (
	ArtifactRun           = "run"
	ArtifactHaulTotals    = "haul_totals"
	ArtifactHaulWeights   = "haul_weights"
	ArtifactRatios        = "ratios"
	ArtifactStratumTotals = "stratum_totals"
	ArtifactNumAtAge      = "num_at_age"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeJSON = "application/json"
	defaultPrefix   = "runs"
	defaultURLTTL   = time.Hour
)

// Exporter writes one directory of artifacts per run.
type Exporter struct {
	store  blob.Store
	prefix string
	urlTTL time.Duration
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithPrefix changes the key prefix (default "runs").
func WithPrefix(prefix string) Option {
	return func(e *Exporter) { e.prefix = prefix }
}

// WithURLExpiry sets the lifetime of pre-signed artifact URLs.
func WithURLExpiry(ttl time.Duration) Option {
	return func(e *Exporter) {
		if ttl > 0 {
			e.urlTTL = ttl
		}
	}
}

// New constructs an Exporter over store.
func New(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{store: store, prefix: defaultPrefix, urlTTL: defaultURLTTL}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type rendered struct {
	name        string
	ext         string
	contentType string
	rows        int
	payload     []byte
}

// Key returns the blob key an artifact of run is written under.
func (e *Exporter) Key(runID, name, ext string) string {
	return path.Join(e.prefix, runID, name+"."+ext)
}

// Export renders every relation of run and uploads the artifacts
// concurrently. Artifacts are returned in a fixed order.
func (e *Exporter) Export(ctx context.Context, run domain.RunRecord) ([]domain.Artifact, error) {
	if run.ID == "" {
		return nil, fmt.Errorf("export: run id required")
	}
	docs, err := render(run)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Artifact, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			artifact, err := e.put(gctx, run, doc)
			if err != nil {
				return err
			}
			out[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Exporter) put(ctx context.Context, run domain.RunRecord, doc rendered) (domain.Artifact, error) {
	key := e.Key(run.ID, doc.name, doc.ext)
	info, err := e.store.Put(ctx, key, bytes.NewReader(doc.payload), blob.PutOptions{
		ContentType: doc.contentType,
		Metadata: map[string]string{
			"run-id": run.ID,
			"rows":   strconv.Itoa(doc.rows),
		},
	})
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("export %s: %w", key, err)
	}
	url, err := e.store.PresignURL(ctx, key, blob.SignedURLOptions{Expiry: e.urlTTL})
	switch {
	case errors.Is(err, blob.ErrUnsupported):
		url = info.URL
	case err != nil:
		return domain.Artifact{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return domain.Artifact{
		Name:        doc.name,
		Key:         key,
		ContentType: doc.contentType,
		SizeBytes:   info.Size,
		Rows:        doc.rows,
		URL:         url,
	}, nil
}

func render(run domain.RunRecord) ([]rendered, error) {
	runJSON, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run: %w", err)
	}
	docs := []rendered{{name: ArtifactRun, ext: "json", contentType: contentTypeJSON, rows: 1, payload: runJSON}}

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{ArtifactHaulTotals, []string{"FOid", "age", "total"}, haulTotalRows(run.HaulTotals)},
		{ArtifactHaulWeights, []string{"FOid", "weight"}, haulWeightRows(run.HaulWeights)},
		{ArtifactRatios, []string{"parent", "parentId", "stratum", "age", "ratio"}, ratioRows(run.Ratios)},
		{ArtifactStratumTotals, []string{"SDid", "stratum", "age", "numAtAge"}, stratumTotalRows(run.StratumTotals)},
		{ArtifactNumAtAge, []string{"age", "numAtAge"}, numAtAgeRows(run.NumAtAge)},
	}
	for _, table := range tables {
		payload, err := writeCSV(table.header, table.rows)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", table.name, err)
		}
		docs = append(docs, rendered{name: table.name, ext: "csv", contentType: contentTypeCSV, rows: len(table.rows), payload: payload})
	}
	return docs, nil
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func itoa64(v int64) string { return strconv.FormatInt(v, 10) }

func haulTotalRows(in []domain.AgeTotal) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{itoa64(r.UnitID), strconv.Itoa(r.Age), r.Total.String()})
	}
	return out
}

func haulWeightRows(in []domain.UnitWeight) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{itoa64(r.UnitID), r.Weight.String()})
	}
	return out
}

func ratioRows(in []domain.StratumRatio) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{string(r.Parent), itoa64(r.ParentID), r.Stratum, strconv.Itoa(r.Age), r.Ratio.String()})
	}
	return out
}

func stratumTotalRows(in []domain.StratumTotal) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{itoa64(r.SDid), r.Stratum, strconv.Itoa(r.Age), r.NumAtAge.String()})
	}
	return out
}

func numAtAgeRows(in []domain.AgeEstimate) [][]string {
	out := make([][]string, 0, len(in))
	for _, r := range in {
		out = append(out, []string{strconv.Itoa(r.Age), r.NumAtAge.String()})
	}
	return out
}
