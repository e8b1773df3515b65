package ports

import (
	"neuromorph/domain/comparison"
)

// ExportSheets selects which statistics tables are written
type ExportSheets struct {
	Summary  bool
	Anova    bool
	Pairwise bool
}

// ReportExporter writes comparison reports to a file
type ReportExporter interface {
	Export(path string, reports []*comparison.ComparisonReport, sheets ExportSheets) error
}
