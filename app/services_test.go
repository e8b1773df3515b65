package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"neuromorph/adapters/importer"
	"neuromorph/adapters/stats/engine"
	"neuromorph/adapters/store"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	apperrors "neuromorph/internal/errors"
	"neuromorph/internal/testkit"
	"neuromorph/ports"
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) Export(path string, reports []*comparison.ComparisonReport, sheets ports.ExportSheets) error {
	args := m.Called(path, reports, sheets)
	return args.Error(0)
}

func newRepository(t *testing.T) ports.MeasurementRepository {
	t.Helper()
	db, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewMeasurementRepository(db)
}

func columns(area, length []float64) [][]float64 {
	rows := make([][]float64, len(area))
	for i := range area {
		rows[i] = []float64{area[i], length[i]}
	}
	return rows
}

func seedAssay(t *testing.T, repo ports.MeasurementRepository) int64 {
	t.Helper()
	ctx := context.Background()
	assay, err := repo.CreateAssay(ctx, "spines", "")
	require.NoError(t, err)

	length := testkit.NormalScores(8, 5, 1)
	for cond, mu := range map[string]float64{"WT": 10, "KO": 12, "Het": 20} {
		table := &measurement.Table{
			Source:     "1_" + cond + "_1.csv",
			Parameters: []string{"Area", "Length"},
			Rows:       columns(testkit.Interleave(testkit.NormalScores(8, mu, 1)), length),
		}
		_, err := repo.InsertTable(ctx, assay.ID, cond, table)
		require.NoError(t, err)
	}
	return assay.ID
}

func newComparisonService(t *testing.T, repo ports.MeasurementRepository, exporter ports.ReportExporter) *ComparisonService {
	t.Helper()
	eng, err := engine.NewEngine()
	require.NoError(t, err)
	return NewComparisonService(repo, eng, exporter, 2)
}

func TestCompareAssay(t *testing.T) {
	repo := newRepository(t)
	assayID := seedAssay(t, repo)
	svc := newComparisonService(t, repo, nil)

	batch, err := svc.CompareAssay(context.Background(), assayID, CompareRequest{
		Parameters: []string{"Area", "Length", "Volume"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Area", "Length"}, batch.Parameters)
	assert.Equal(t, []string{"Volume"}, batch.Skipped)
	assert.Empty(t, batch.Failures)
	assert.Equal(t, []string{"Area"}, batch.Significant())

	area := batch.Reports["Area"]
	assert.Equal(t, comparison.KindOneWayANOVA, area.MainTest.Kind)
	assert.Len(t, area.PostHoc, 3)
	assert.Len(t, area.GroupNames, 3)
	assert.False(t, batch.Reports["Length"].PostHocAttempted())
}

func TestCompareAssayFiltersConditions(t *testing.T) {
	repo := newRepository(t)
	assayID := seedAssay(t, repo)
	svc := newComparisonService(t, repo, nil)
	forced := false

	batch, err := svc.CompareAssay(context.Background(), assayID, CompareRequest{
		Conditions: []string{"WT", "KO"},
		Forced:     &forced,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Area", "Length"}, batch.Parameters)
	area := batch.Reports["Area"]
	assert.Equal(t, comparison.KindMannWhitneyU, area.MainTest.Kind)
	assert.ElementsMatch(t, []string{"WT", "KO"}, area.GroupNames)
}

func TestCompareAssayUnknown(t *testing.T) {
	svc := newComparisonService(t, newRepository(t), nil)
	_, err := svc.CompareAssay(context.Background(), 42, CompareRequest{})
	assert.ErrorIs(t, err, core.ErrAssayNotFound)
}

func TestCompareFrameMissingGroupColumn(t *testing.T) {
	svc := newComparisonService(t, newRepository(t), nil)
	frame := testkit.LongFrame("Area", "condition", testkit.Group("A", []float64{1, 2}), testkit.Group("B", []float64{3, 4}))
	_, err := svc.CompareFrame(context.Background(), frame, []string{"Area"}, "genotype", CompareRequest{})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestExportAssay(t *testing.T) {
	repo := newRepository(t)
	assayID := seedAssay(t, repo)
	exporter := new(mockExporter)
	sheets := ports.ExportSheets{Summary: true, Pairwise: true}
	exporter.On("Export", "out.xlsx", mock.MatchedBy(func(reports []*comparison.ComparisonReport) bool {
		return len(reports) == 2 && reports[0].ValueColumn == "Area" && reports[1].ValueColumn == "Length"
	}), sheets).Return(nil)

	svc := newComparisonService(t, repo, exporter)
	batch, err := svc.ExportAssay(context.Background(), assayID, CompareRequest{}, "out.xlsx", sheets)
	require.NoError(t, err)
	assert.Len(t, batch.Parameters, 2)
	exporter.AssertExpectations(t)
}

func TestExportAssayWriteFailure(t *testing.T) {
	repo := newRepository(t)
	assayID := seedAssay(t, repo)
	exporter := new(mockExporter)
	exporter.On("Export", "locked.xlsx", mock.Anything, mock.Anything).Return(os.ErrPermission)

	svc := newComparisonService(t, repo, exporter)
	batch, err := svc.ExportAssay(context.Background(), assayID, CompareRequest{}, "locked.xlsx", ports.ExportSheets{Summary: true})
	require.Error(t, err)
	assert.NotNil(t, batch)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, apperrors.CodeExportFailed, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "locked.xlsx")
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"1_WT_1.csv":  "Area,Length\n1,2\n3,4\n",
		"1_WT_2.csv":  "Area;Length\n5;6\n",
		"1_KO_1.json": `{"measurements": [{"Area": 7, "Length": 8}]}`,
		"1_KO_2.csv":  "Width\n1\n",
		"readme.txt":  "ignored",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	repo := newRepository(t)
	svc := NewImportService(repo, importer.New())
	ctx := context.Background()

	result, err := svc.Import(ctx, ImportRequest{Assay: "neurons", Directory: dir, Parameters: []string{"Area", "Length"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Files)
	assert.Equal(t, 4, result.Rows)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "1_KO_2.csv", result.Failures[0].File)
	assert.ErrorIs(t, result.Failures[0].Err, core.ErrMissingParameters)
	assert.Equal(t, apperrors.CodeImportFailed, apperrors.GetCode(result.Failures[0].Err))

	again, err := svc.Import(ctx, ImportRequest{Assay: "neurons", Directory: dir, Parameters: []string{"Area", "Length"}})
	require.NoError(t, err)
	assert.Equal(t, result.Assay.ID, again.Assay.ID)
	assert.Zero(t, again.Files)
	assert.ElementsMatch(t, []string{"1_WT_1.csv", "1_WT_2.csv", "1_KO_1.json"}, again.Duplicates)

	conditions, err := repo.Conditions(ctx, result.Assay.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"KO", "WT"}, conditions)
}

func TestImportValidation(t *testing.T) {
	svc := NewImportService(newRepository(t), importer.New())
	ctx := context.Background()

	_, err := svc.Import(ctx, ImportRequest{Directory: t.TempDir()})
	assert.True(t, core.IsValidationError(err))

	_, err = svc.Import(ctx, ImportRequest{Assay: "x", Directory: t.TempDir()})
	assert.True(t, core.IsValidationError(err), "empty directory")

	_, err = svc.Import(ctx, ImportRequest{Assay: "x", Paths: []string{"data.csv"}})
	assert.True(t, core.IsValidationError(err))
}
