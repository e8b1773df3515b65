package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
)

// Reader reads measurement tables from .xlsx workbooks
type Reader struct {
	// SheetIndex selects the worksheet, 0 is the first
	SheetIndex int
	log        *internal.Logger
}

// NewReader creates a reader for the first sheet
func NewReader() *Reader {
	return &Reader{log: internal.DefaultLogger.WithComponent("DataReader")}
}

// ReadTable reads the header row and data rows of one sheet
func (r *Reader) ReadTable(ctx context.Context, path string, parameters []string) (*measurement.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xls" {
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save %s as .xlsx", core.ErrUnsupportedFormat, filepath.Base(path))
	}
	if ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %s is not an Excel workbook", core.ErrUnsupportedFormat, filepath.Base(path))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("XLSX file not found: %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if r.SheetIndex < 0 || r.SheetIndex >= len(sheets) {
		return nil, fmt.Errorf("sheet index %d out of range, %s has %d sheets", r.SheetIndex, filepath.Base(path), len(sheets))
	}
	sheet := sheets[r.SheetIndex]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	r.logger().Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have a header row: %s", path)
	}

	table, err := measurement.BuildTable(filepath.Base(path), rows[0], rows[1:], parameters)
	if err != nil {
		return nil, err
	}
	r.logger().Info("XLSX file processed (%d parameters, %d rows)", len(table.Parameters), table.Len())
	return table, nil
}

// SheetNames lists the worksheets of a workbook
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (r *Reader) logger() *internal.Logger {
	if r.log == nil {
		return internal.DefaultLogger.WithComponent("DataReader")
	}
	return r.log
}
