package excel

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"neuromorph/domain/comparison"
	"neuromorph/internal"
	"neuromorph/ports"
)

const (
	headerFill = "366092"
	fillP001   = "FF6B6B"
	fillP01    = "FFA07A"
	fillP05    = "FFD700"

	maxColumnWidth = 50
)

// Sheets selects which statistics tables are written
type Sheets = ports.ExportSheets

// AllSheets writes every table
var AllSheets = Sheets{Summary: true, Anova: true, Pairwise: true}

// StatTable is one sheet: a header and rows of cell values
type StatTable struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// StatisticsExporter writes comparison reports as formatted workbooks
type StatisticsExporter struct {
	log *internal.Logger
}

var _ ports.ReportExporter = (*StatisticsExporter)(nil)

// NewStatisticsExporter creates an exporter
func NewStatisticsExporter() *StatisticsExporter {
	return &StatisticsExporter{log: internal.DefaultLogger.WithComponent("StatisticsExporter")}
}

// SignificanceLabel renders a p-value as its star label
func SignificanceLabel(p float64) string {
	switch stars := comparison.Stars(p); stars {
	case "***":
		return "*** (p<0.001)"
	case "**":
		return "** (p<0.01)"
	case "*":
		return "* (p<0.05)"
	default:
		return "ns (p≥0.05)"
	}
}

// BuildTables lays out the Summary, Anova and Pairwise tables for reports,
// one block of rows per parameter in the given order.
func BuildTables(reports []*comparison.ComparisonReport, sheets Sheets) []StatTable {
	var tables []StatTable
	if sheets.Summary {
		t := StatTable{
			Name:   "Summary",
			Header: []string{"Parameter", "Condition", "N", "Mean", "SEM", "SD", "Median", "Min", "Max", "Q25", "Q75"},
		}
		for _, r := range reports {
			for _, d := range r.Descriptives {
				t.Rows = append(t.Rows, []interface{}{
					r.ValueColumn, d.Group, d.N,
					f3(d.Mean), f3(d.SEM()), f3(d.Std), f3(d.Median),
					f3(d.Min), f3(d.Max), f3(d.Q25), f3(d.Q75),
				})
			}
		}
		tables = append(tables, t)
	}

	if sheets.Anova {
		t := StatTable{
			Name:   "Anova",
			Header: []string{"Parameter", "Test", "Statistic", "p-value", "Significant", "Alpha"},
		}
		for _, r := range reports {
			t.Rows = append(t.Rows, []interface{}{
				r.ValueColumn, r.MainTest.TestName, fmt.Sprintf("%.4f", r.MainTest.Statistic),
				fmt.Sprintf("%.4e", r.MainTest.PValue), yesNo(r.MainTest.Significant), r.Alpha,
			})
			for _, v := range r.NormalityVerdicts {
				verdict := "Non-normal"
				if v.IsNormal {
					verdict = "Normal"
				}
				t.Rows = append(t.Rows, []interface{}{
					r.ValueColumn, fmt.Sprintf("Normality (%s)", v.Group), "-",
					fmt.Sprintf("%.4e", v.PValue), verdict, r.Alpha,
				})
			}
		}
		tables = append(tables, t)
	}

	if sheets.Pairwise {
		t := StatTable{
			Name:   "Pairwise",
			Header: []string{"Parameter", "Group 1", "Group 2", "Method", "Mean Difference", "p-value", "Significant"},
		}
		for _, r := range reports {
			if len(r.PostHoc) == 0 {
				t.Rows = append(t.Rows, []interface{}{r.ValueColumn, "No significant", "differences found", "-", "-", "-", "No"})
				continue
			}
			for _, ph := range r.PostHoc {
				t.Rows = append(t.Rows, []interface{}{
					r.ValueColumn, ph.Group1, ph.Group2, ph.Method,
					f3(ph.MeanDifference), fmt.Sprintf("%.4e", ph.PValue), SignificanceLabel(ph.PValue),
				})
			}
		}
		tables = append(tables, t)
	}
	return tables
}

// Export writes the selected tables to an .xlsx file
func (e *StatisticsExporter) Export(path string, reports []*comparison.ComparisonReport, sheets Sheets) error {
	tables := BuildTables(reports, sheets)
	if len(tables) == 0 {
		return fmt.Errorf("no sheets selected for export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create cell style: %w", err)
	}
	starStyles := make(map[string]int, 3)
	for stars, color := range map[string]string{"***": fillP001, "**": fillP01, "*": fillP05} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return fmt.Errorf("failed to create significance style: %w", err)
		}
		starStyles[stars] = id
	}

	for i, table := range tables {
		idx, err := f.NewSheet(table.Name)
		if err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeTable(f, table, headerStyle, cellStyle, starStyles); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	e.log.Info("exported %d parameters to %s", len(reports), path)
	return nil
}

func writeTable(f *excelize.File, table StatTable, headerStyle, cellStyle int, starStyles map[string]int) error {
	widths := make([]int, len(table.Header))
	for col, name := range table.Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(table.Name, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[col] = utf8.RuneCountInString(name)
	}
	last, _ := excelize.CoordinatesToCellName(len(table.Header), 1)
	if err := f.SetCellStyle(table.Name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	sigCol := len(table.Header) - 1
	for r, row := range table.Rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			if err := f.SetCellValue(table.Name, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", table.Name, cell, err)
			}
			style := cellStyle
			if s, ok := value.(string); ok && col == sigCol && table.Header[sigCol] == "Significant" {
				for _, stars := range []string{"***", "**", "*"} {
					if strings.HasPrefix(s, stars) {
						style = starStyles[stars]
						break
					}
				}
			}
			if err := f.SetCellStyle(table.Name, cell, cell, style); err != nil {
				return fmt.Errorf("failed to style %s!%s: %w", table.Name, cell, err)
			}
			if n := utf8.RuneCountInString(fmt.Sprint(value)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		width := w + 2
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(table.Name, name, name, float64(width)); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func f3(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
