// Package measurement holds imported morphology measurements: assays, the
// wide tables read from files, and the narrow rows they are stored as.
package measurement

import (
	"math"
	"time"
)

// ConditionColumn is the categorical column name used when measurements are
// turned into a comparison frame.
const ConditionColumn = "condition"

// Assay groups measurements from one experiment
type Assay struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Table is one imported file: named parameter columns over rows of values.
// Missing cells are NaN.
type Table struct {
	Source     string
	Parameters []string
	Rows       [][]float64
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the values of one parameter
func (t *Table) Column(parameter string) ([]float64, bool) {
	idx := -1
	for i, p := range t.Parameters {
		if p == parameter {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		} else {
			out[i] = math.NaN()
		}
	}
	return out, true
}

// Measurement is one stored value, narrow form
type Measurement struct {
	SourceFile string  `db:"source_file"`
	Condition  string  `db:"condition"`
	Row        int     `db:"row_index"`
	Parameter  string  `db:"parameter"`
	Value      float64 `db:"value"`
}

// Filter restricts a measurement query. Empty slices mean no restriction.
type Filter struct {
	Parameters []string
	Conditions []string
}

// SourceFile describes a file whose name follows
// <experiment>_<Condition>_<image>[L|T].<ext>
type SourceFile struct {
	Path       string
	Name       string
	Experiment int
	Condition  string
	Image      int
	Suffix     string
	Extension  string
}
