package engine

import (
	"errors"
	"math"

	"neuromorph/domain/comparison"
)

// CompareParameters runs Compare independently for every parameter column.
// A failing parameter is recorded and the rest continue; parameters with
// no valid observation are skipped. Only a missing group column fails the
// whole batch.
func (e *Engine) CompareParameters(frame *comparison.Frame, parameters []string, groupColumn string, forced *bool, opts ...CompareOption) (*comparison.BatchReport, error) {
	labels, err := frame.Categorical(groupColumn)
	if err != nil {
		return nil, err
	}

	batch := &comparison.BatchReport{
		GroupColumn: groupColumn,
		Reports:     make(map[string]*comparison.ComparisonReport, len(parameters)),
	}
	for _, param := range parameters {
		report, err := e.compareParameter(frame, labels, param, groupColumn, forced, opts...)
		switch {
		case errors.Is(err, errNoData):
			batch.Skipped = append(batch.Skipped, param)
		case err != nil:
			batch.Failures = append(batch.Failures, comparison.ParameterFailure{Parameter: param, Err: err})
		default:
			batch.Parameters = append(batch.Parameters, param)
			batch.Reports[param] = report
		}
	}
	return batch, nil
}

var errNoData = errors.New("no data")

func (e *Engine) compareParameter(frame *comparison.Frame, labels []string, param, groupColumn string, forced *bool, opts ...CompareOption) (*comparison.ComparisonReport, error) {
	values, err := frame.Numeric(param)
	if err != nil {
		return nil, err
	}
	if !hasObservation(values, labels) {
		return nil, errNoData
	}
	return e.Compare(frame, param, groupColumn, forced, opts...)
}

func hasObservation(values []float64, labels []string) bool {
	for i, v := range values {
		if !math.IsNaN(v) && labels[i] != "" {
			return true
		}
	}
	return false
}
