package measurement

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"neuromorph/domain/core"
)

// ParseCell converts a raw cell to a value. Blank and non-numeric cells are
// NaN; decimal commas are accepted.
func ParseCell(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
			if v, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
				return v, true
			}
		}
		return math.NaN(), false
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN(), false
	}
	return v, true
}

// BuildTable turns a header and string records into a Table. Columns with
// no numeric cell are dropped unless selected. A non-empty selection keeps
// only those columns, in that order, and fails if any is missing.
func BuildTable(source string, header []string, records [][]string, selected []string) (*Table, error) {
	index := make(map[string]int, len(header))
	var names []string
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		names = append(names, name)
	}

	columns := names
	if len(selected) > 0 {
		var missing []string
		for _, p := range selected {
			if _, ok := index[p]; !ok {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s in %s", core.ErrMissingParameters, strings.Join(missing, ", "), source)
		}
		columns = selected
	}

	numeric := make(map[string]bool, len(columns))
	rows := make([][]float64, 0, len(records))
	for _, record := range records {
		if blankRecord(record) {
			continue
		}
		row := make([]float64, len(columns))
		for j, name := range columns {
			cell := ""
			if i := index[name]; i < len(record) {
				cell = record[i]
			}
			v, ok := ParseCell(cell)
			row[j] = v
			if ok {
				numeric[name] = true
			}
		}
		rows = append(rows, row)
	}

	if len(selected) > 0 {
		return &Table{Source: source, Parameters: append([]string(nil), columns...), Rows: rows}, nil
	}

	var keep []int
	var params []string
	for j, name := range columns {
		if numeric[name] {
			keep = append(keep, j)
			params = append(params, name)
		}
	}
	if len(keep) < len(columns) {
		for i, row := range rows {
			trimmed := make([]float64, len(keep))
			for k, j := range keep {
				trimmed[k] = row[j]
			}
			rows[i] = trimmed
		}
	}
	return &Table{Source: source, Parameters: params, Rows: rows}, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
