package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"neuromorph/adapters/excel"
	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
	"neuromorph/ports"
)

// Importer dispatches to a reader by file extension
type Importer struct {
	readers map[string]ports.TableReader
	log     *internal.Logger
}

// New creates an importer for .csv, .json and .xlsx files
func New() *Importer {
	xlsx := excel.NewReader()
	return &Importer{
		readers: map[string]ports.TableReader{
			".csv":  CSVReader{},
			".json": JSONReader{},
			".xlsx": xlsx,
			".xls":  xlsx,
		},
		log: internal.DefaultLogger.WithComponent("Importer"),
	}
}

// ReadTable implements ports.TableReader
func (im *Importer) ReadTable(ctx context.Context, path string, parameters []string) (*measurement.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := im.readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	table, err := reader.ReadTable(ctx, path, parameters)
	if err != nil {
		return nil, err
	}
	im.log.Debug("read %s: %d parameters, %d rows", table.Source, len(table.Parameters), table.Len())
	return table, nil
}

// ReadFiles reads scanned files grouped by condition, keeping the
// condition order of files.
func (im *Importer) ReadFiles(ctx context.Context, files []measurement.SourceFile, parameters []string) (map[string][]*measurement.Table, []string, error) {
	tables := make(map[string][]*measurement.Table)
	for _, f := range files {
		table, err := im.ReadTable(ctx, f.Path, parameters)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		tables[f.Condition] = append(tables[f.Condition], table)
	}
	return tables, Conditions(files), nil
}
