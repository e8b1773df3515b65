package importer

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want measurement.SourceFile
	}{
		{"1_WT_3.csv", true, measurement.SourceFile{Experiment: 1, Condition: "WT", Image: 3, Extension: "csv"}},
		{"12_KO_7L.xlsx", true, measurement.SourceFile{Experiment: 12, Condition: "KO", Image: 7, Suffix: "L", Extension: "xlsx"}},
		{"2_Het_1T.json", true, measurement.SourceFile{Experiment: 2, Condition: "Het", Image: 1, Suffix: "T", Extension: "json"}},
		{"3_WT_2.xls", true, measurement.SourceFile{Experiment: 3, Condition: "WT", Image: 2, Extension: "xls"}},
		{"1_WT1_3.csv", false, measurement.SourceFile{}},
		{"WT_1.csv", false, measurement.SourceFile{}},
		{"1_WT_3X.csv", false, measurement.SourceFile{}},
		{"1_WT_3.txt", false, measurement.SourceFile{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFilename(filepath.Join("data", tt.name))
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			tt.want.Path = filepath.Join("data", tt.name)
			tt.want.Name = tt.name
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2_WT_1L.csv", "1_KO_2T.csv", "1_KO_1L.json", "notes.txt", "1_WT_1.csv"} {
		writeFile(t, dir, name, "A\n1\n")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "3_WT_1.csv"), 0o755))

	files, err := ScanDirectory(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"1_KO_1L.json", "1_KO_2T.csv", "1_WT_1.csv", "2_WT_1L.csv"}, names)
	assert.Equal(t, []string{"L", "T"}, DetectDatasets(files))
	assert.Len(t, FilterDataset(files, "L"), 2)
	assert.Len(t, FilterDataset(files, ""), 4)
	assert.Equal(t, []string{"KO", "WT"}, Conditions(files))

	_, err = ScanDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCSVDelimiterDetection(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"comma.csv", "Area,Length\n1.5,2\n3,4\n"},
		{"semicolon.csv", "Area;Length\n1,5;2\n3;4\n"},
		{"tab.csv", "Area\tLength\r\n1.5\t2\r\n3\t4\r\n"},
		{"bom.csv", "\ufeffArea,Length\n1.5,2\n3,4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.content)
			table, err := CSVReader{}.ReadTable(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"Area", "Length"}, table.Parameters)
			assert.Equal(t, [][]float64{{1.5, 2}, {3, 4}}, table.Rows)
		})
	}
}

func TestCSVExplicitDelimiterAndSelection(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.csv", "ID|Area|Length\ncell1|5|\ncell2|6|7\n")
	table, err := CSVReader{Delimiter: '|'}.ReadTable(context.Background(), path, []string{"Length"})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.True(t, math.IsNaN(table.Rows[0][0]))
	assert.Equal(t, 7.0, table.Rows[1][0])

	_, err = CSVReader{}.ReadTable(context.Background(), path, []string{"Volume"})
	assert.ErrorIs(t, err, core.ErrMissingParameters)
}

func TestCSVEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")
	_, err := CSVReader{}.ReadTable(context.Background(), path, nil)
	assert.Error(t, err)
}

func TestJSONShapes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		rows    int
	}{
		{"wrapped.json", `{"measurements": [{"Length": 2, "Area": 1}, {"Length": 4, "Area": "3"}]}`, 2},
		{"array.json", `[{"Length": 2, "Area": 1}, {"Length": 4, "Area": 3}]`, 2},
		{"single.json", `{"Length": 2, "Area": 1, "label": "soma"}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.content)
			table, err := JSONReader{}.ReadTable(context.Background(), path, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"Length", "Area"}, table.Parameters, "file key order")
			assert.Equal(t, tt.rows, table.Len())
			assert.Equal(t, []float64{2, 1}, table.Rows[0])
		})
	}
}

func TestJSONErrors(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.json":  `[]`,
		"scalar.json": `42`,
		"broken.json": `{"measurements": [`,
		"nested.json": `{"measurements": {"Area": 1}}`,
		"items.json":  `[1, 2]`,
	} {
		path := writeFile(t, dir, name, content)
		_, err := JSONReader{}.ReadTable(context.Background(), path, nil)
		assert.Error(t, err, name)
	}
}

func TestImporterDispatch(t *testing.T) {
	dir := t.TempDir()
	im := New()

	_, err := im.ReadTable(context.Background(), filepath.Join(dir, "1_WT_1.xls"), nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = im.ReadTable(context.Background(), filepath.Join(dir, "1_WT_1.txt"), nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	writeFile(t, dir, "1_WT_1.csv", "Area\n1\n2\n")
	writeFile(t, dir, "1_KO_1.json", `[{"Area": 5}, {"Area": 6}]`)
	writeFile(t, dir, "1_WT_2.csv", "Area\n3\n")

	files, err := ScanDirectory(dir)
	require.NoError(t, err)
	tables, conditions, err := im.ReadFiles(context.Background(), files, []string{"Area"})
	require.NoError(t, err)
	assert.Equal(t, []string{"KO", "WT"}, conditions)
	assert.Len(t, tables["WT"], 2)

	frame, err := measurement.FromTables(tables, conditions, []string{"Area"})
	require.NoError(t, err)
	assert.Equal(t, 5, frame.Rows())
}
