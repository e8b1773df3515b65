package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"neuromorph/adapters/stats/engine"
	"neuromorph/domain/comparison"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
	apperrors "neuromorph/internal/errors"
	"neuromorph/ports"
)

// ComparisonService runs group comparisons over stored assays
type ComparisonService struct {
	repo     ports.MeasurementRepository
	engine   *engine.Engine
	exporter ports.ReportExporter
	workers  int
	log      *internal.Logger
}

// CompareRequest selects what to compare within an assay
type CompareRequest struct {
	Parameters []string // empty means every stored parameter
	Conditions []string // empty means every condition
	Forced     *bool    // nil lets normality testing choose the family
	Normality  comparison.NormalityMethod
}

func (r CompareRequest) options() []engine.CompareOption {
	if r.Normality == "" {
		return nil
	}
	return []engine.CompareOption{engine.UsingNormality(r.Normality)}
}

// NewComparisonService creates a comparison service. workers bounds the
// number of parameters compared at once.
func NewComparisonService(repo ports.MeasurementRepository, eng *engine.Engine, exporter ports.ReportExporter, workers int) *ComparisonService {
	if workers < 1 {
		workers = 1
	}
	return &ComparisonService{
		repo:     repo,
		engine:   eng,
		exporter: exporter,
		workers:  workers,
		log:      internal.DefaultLogger.WithComponent("ComparisonService"),
	}
}

// Engine returns the underlying comparison engine
func (s *ComparisonService) Engine() *engine.Engine {
	return s.engine
}

// CompareAssay loads an assay's measurements and compares each parameter
// across conditions. Requested parameters with no stored values are skipped.
func (s *ComparisonService) CompareAssay(ctx context.Context, assayID int64, req CompareRequest) (*comparison.BatchReport, error) {
	if _, err := s.repo.GetAssay(ctx, assayID); err != nil {
		return nil, err
	}

	parameters := req.Parameters
	if len(parameters) == 0 {
		stored, err := s.repo.Parameters(ctx, assayID)
		if err != nil {
			return nil, err
		}
		parameters = stored
	}

	rows, err := s.repo.Measurements(ctx, assayID, measurement.Filter{
		Parameters: parameters,
		Conditions: req.Conditions,
	})
	if err != nil {
		return nil, err
	}

	frame, present, err := measurement.ToFrame(rows, parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to build frame for assay %d: %w", assayID, err)
	}

	s.log.Info("comparing %d parameters for assay %d (%d rows)", len(parameters), assayID, frame.Rows())
	batch, err := s.CompareFrame(ctx, frame, present, measurement.ConditionColumn, req)
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(present))
	for _, p := range present {
		available[p] = true
	}
	var skipped []string
	for _, p := range parameters {
		if !available[p] {
			skipped = append(skipped, p)
		}
	}
	batch.Skipped = append(skipped, batch.Skipped...)
	return batch, nil
}

// CompareFrame compares parameters concurrently and assembles the batch in
// parameter order. Cancelling ctx stops scheduling further parameters.
func (s *ComparisonService) CompareFrame(ctx context.Context, frame *comparison.Frame, parameters []string, groupColumn string, req CompareRequest) (*comparison.BatchReport, error) {
	if _, err := frame.Categorical(groupColumn); err != nil {
		return nil, err
	}

	partial := make([]*comparison.BatchReport, len(parameters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, param := range parameters {
		i, param := i, param
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			one, err := s.engine.CompareParameters(frame, []string{param}, groupColumn, req.Forced, req.options()...)
			if err != nil {
				return err
			}
			partial[i] = one
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	batch := &comparison.BatchReport{
		GroupColumn: groupColumn,
		Reports:     make(map[string]*comparison.ComparisonReport, len(parameters)),
	}
	for _, one := range partial {
		batch.Parameters = append(batch.Parameters, one.Parameters...)
		batch.Skipped = append(batch.Skipped, one.Skipped...)
		batch.Failures = append(batch.Failures, one.Failures...)
		for p, r := range one.Reports {
			batch.Reports[p] = r
		}
	}
	for _, f := range batch.Failures {
		s.log.Warn("%s: %v", f.Parameter, f.Err)
	}
	return batch, nil
}

// ExportAssay compares an assay and writes the statistics workbook
func (s *ComparisonService) ExportAssay(ctx context.Context, assayID int64, req CompareRequest, path string, sheets ports.ExportSheets) (*comparison.BatchReport, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("no exporter configured")
	}
	batch, err := s.CompareAssay(ctx, assayID, req)
	if err != nil {
		return nil, err
	}
	if len(batch.Parameters) == 0 {
		return batch, fmt.Errorf("nothing to export for assay %d: no parameter could be compared", assayID)
	}
	reports := make([]*comparison.ComparisonReport, 0, len(batch.Parameters))
	for _, p := range batch.Parameters {
		reports = append(reports, batch.Reports[p])
	}
	if err := s.exporter.Export(path, reports, sheets); err != nil {
		return batch, apperrors.ExportFailed(path, err)
	}
	return batch, nil
}
