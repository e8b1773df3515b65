package comparison

import (
	"fmt"
	"math"
	"strings"

	"neuromorph/domain/core"
)

// Frame is a long-form table: one row per observation, numeric value
// columns next to categorical label columns, all of equal length.
type Frame struct {
	rows        int
	order       []string
	numeric     map[string][]float64
	categorical map[string][]string
}

// NewFrame creates an empty frame
func NewFrame() *Frame {
	return &Frame{
		rows:        -1,
		numeric:     make(map[string][]float64),
		categorical: make(map[string][]string),
	}
}

func (f *Frame) checkColumn(name string, n int) error {
	if strings.TrimSpace(name) == "" {
		return core.NewValidationError("column", "name cannot be empty")
	}
	if _, ok := f.numeric[name]; ok {
		return core.NewValidationError(name, "duplicate column")
	}
	if _, ok := f.categorical[name]; ok {
		return core.NewValidationError(name, "duplicate column")
	}
	if f.rows >= 0 && n != f.rows {
		return core.NewValidationError(name, fmt.Sprintf("has %d rows, frame has %d", n, f.rows))
	}
	return nil
}

// AddNumeric appends a numeric column. Missing values are NaN.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if err := f.checkColumn(name, len(values)); err != nil {
		return err
	}
	f.numeric[name] = append([]float64(nil), values...)
	f.order = append(f.order, name)
	f.rows = len(values)
	return nil
}

// AddCategorical appends a label column. Missing labels are empty strings.
func (f *Frame) AddCategorical(name string, values []string) error {
	if err := f.checkColumn(name, len(values)); err != nil {
		return err
	}
	f.categorical[name] = append([]string(nil), values...)
	f.order = append(f.order, name)
	f.rows = len(values)
	return nil
}

// Rows returns the number of rows
func (f *Frame) Rows() int {
	if f.rows < 0 {
		return 0
	}
	return f.rows
}

// Columns returns all column names in insertion order
func (f *Frame) Columns() []string {
	return append([]string(nil), f.order...)
}

// NumericColumns returns the numeric column names in insertion order
func (f *Frame) NumericColumns() []string {
	var cols []string
	for _, name := range f.order {
		if _, ok := f.numeric[name]; ok {
			cols = append(cols, name)
		}
	}
	return cols
}

// Numeric returns a copy of a numeric column
func (f *Frame) Numeric(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return append([]float64(nil), col...), nil
}

// Categorical returns a copy of a label column
func (f *Frame) Categorical(name string) ([]string, error) {
	col, ok := f.categorical[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return append([]string(nil), col...), nil
}

// Group is one labeled sample
type Group struct {
	Label  string
	Sample []float64
}

// GroupSet is an ordered list of groups with unique labels in first-seen order
type GroupSet []Group

// NewGroupSet validates groups: at least two, unique non-empty labels,
// every sample non-empty.
func NewGroupSet(groups []Group) (GroupSet, error) {
	seen := make(map[string]bool, len(groups))
	gs := make(GroupSet, 0, len(groups))
	for _, g := range groups {
		if g.Label == "" {
			return nil, core.NewValidationError("group", "label cannot be empty")
		}
		if seen[g.Label] {
			return nil, core.NewValidationError(g.Label, "duplicate group label")
		}
		if len(g.Sample) == 0 {
			return nil, core.NewValidationError(g.Label, "group has no observations")
		}
		seen[g.Label] = true
		gs = append(gs, Group{Label: g.Label, Sample: append([]float64(nil), g.Sample...)})
	}
	if len(gs) < 2 {
		return nil, core.NewInvalidGroupCountError(len(gs))
	}
	return gs, nil
}

// Labels returns the group labels in order
func (gs GroupSet) Labels() []string {
	labels := make([]string, len(gs))
	for i, g := range gs {
		labels[i] = g.Label
	}
	return labels
}

// Samples returns the samples in label order
func (gs GroupSet) Samples() [][]float64 {
	out := make([][]float64, len(gs))
	for i, g := range gs {
		out[i] = g.Sample
	}
	return out
}

// GroupBy partitions valueColumn by groupColumn. Rows with a NaN value or an
// empty label are dropped, so a label with no valid value is not a group.
func GroupBy(f *Frame, valueColumn, groupColumn string) (GroupSet, error) {
	values, err := f.Numeric(valueColumn)
	if err != nil {
		return nil, err
	}
	labels, err := f.Categorical(groupColumn)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var groups []Group
	for i, v := range values {
		label := labels[i]
		if label == "" || math.IsNaN(v) {
			continue
		}
		idx, ok := index[label]
		if !ok {
			idx = len(groups)
			index[label] = idx
			groups = append(groups, Group{Label: label})
		}
		groups[idx].Sample = append(groups[idx].Sample, v)
	}

	if len(groups) < 2 {
		return nil, core.NewInvalidGroupCountError(len(groups))
	}
	return GroupSet(groups), nil
}
