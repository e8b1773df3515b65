package measurement

import (
	"math"

	"neuromorph/domain/comparison"
)

type rowKey struct {
	source    string
	condition string
	row       int
}

// ToFrame pivots narrow measurements back to a long-form frame with one
// numeric column per parameter and a "condition" column. Row order follows
// first appearance. Parameters absent from the data are skipped; pass nil
// to use every parameter in first-seen order.
func ToFrame(measurements []Measurement, parameters []string) (*comparison.Frame, []string, error) {
	if parameters == nil {
		seen := make(map[string]bool)
		for _, m := range measurements {
			if !seen[m.Parameter] {
				seen[m.Parameter] = true
				parameters = append(parameters, m.Parameter)
			}
		}
	}

	rowIndex := make(map[rowKey]int)
	var conditions []string
	for _, m := range measurements {
		key := rowKey{m.SourceFile, m.Condition, m.Row}
		if _, ok := rowIndex[key]; !ok {
			rowIndex[key] = len(conditions)
			conditions = append(conditions, m.Condition)
		}
	}

	present := make(map[string][]float64, len(parameters))
	for _, m := range measurements {
		col, ok := present[m.Parameter]
		if !ok {
			col = make([]float64, len(conditions))
			for i := range col {
				col[i] = math.NaN()
			}
			present[m.Parameter] = col
		}
		col[rowIndex[rowKey{m.SourceFile, m.Condition, m.Row}]] = m.Value
	}

	frame := comparison.NewFrame()
	if err := frame.AddCategorical(ConditionColumn, conditions); err != nil {
		return nil, nil, err
	}
	var used []string
	for _, p := range parameters {
		col, ok := present[p]
		if !ok || p == ConditionColumn {
			continue
		}
		if err := frame.AddNumeric(p, col); err != nil {
			return nil, nil, err
		}
		used = append(used, p)
	}
	return frame, used, nil
}

// FromTables builds a frame directly from imported tables, one condition per
// table, for comparisons that bypass the store.
func FromTables(tables map[string][]*Table, conditionOrder []string, parameters []string) (*comparison.Frame, error) {
	var rows []Measurement
	for _, condition := range conditionOrder {
		for _, table := range tables[condition] {
			for r, values := range table.Rows {
				for c, p := range table.Parameters {
					if c < len(values) && !math.IsNaN(values[c]) {
						rows = append(rows, Measurement{
							SourceFile: table.Source,
							Condition:  condition,
							Row:        r,
							Parameter:  p,
							Value:      values[c],
						})
					}
				}
			}
		}
	}
	frame, _, err := ToFrame(rows, parameters)
	return frame, err
}
