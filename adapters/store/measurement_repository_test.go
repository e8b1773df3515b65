package store

import (
	"context"
	"math"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	apperrors "neuromorph/internal/errors"
	"neuromorph/ports"
)

func newTestRepository(t *testing.T) ports.MeasurementRepository {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMeasurementRepository(db)
}

func table(source string, params []string, rows ...[]float64) *measurement.Table {
	return &measurement.Table{Source: source, Parameters: params, Rows: rows}
}

func TestAssayLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	first, err := repo.CreateAssay(ctx, "spines", "dendritic spines")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := repo.CreateAssay(ctx, "somata", "")
	require.NoError(t, err)

	_, err = repo.CreateAssay(ctx, "spines", "again")
	assert.Error(t, err, "names are unique")

	got, err := repo.GetAssay(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "dendritic spines", got.Description)

	byName, err := repo.GetAssayByName(ctx, "somata")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byName.ID)

	assays, err := repo.ListAssays(ctx)
	require.NoError(t, err)
	require.Len(t, assays, 2)
	assert.Equal(t, "somata", assays[0].Name, "newest first")

	require.NoError(t, repo.DeleteAssay(ctx, first.ID))
	_, err = repo.GetAssay(ctx, first.ID)
	assert.ErrorIs(t, err, core.ErrAssayNotFound)
	assert.True(t, core.IsNotFoundError(err))

	assert.ErrorIs(t, repo.DeleteAssay(ctx, 9999), core.ErrAssayNotFound)
	_, err = repo.GetAssayByName(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrAssayNotFound)
}

func TestInsertAndQueryMeasurements(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	assay, err := repo.CreateAssay(ctx, "a", "")
	require.NoError(t, err)

	n, err := repo.InsertTable(ctx, assay.ID, "WT", table("1_WT_1.csv", []string{"Area", "Length"},
		[]float64{10, 1}, []float64{12, math.NaN()}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.InsertTable(ctx, assay.ID, "KO", table("1_KO_1.csv", []string{"Area", "Length"},
		[]float64{20, 2}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := repo.Measurements(ctx, assay.ID, measurement.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 5, "NaN cells are not stored")
	assert.Equal(t, measurement.Measurement{SourceFile: "1_WT_1.csv", Condition: "WT", Row: 0, Parameter: "Area", Value: 10}, rows[0])

	areas, err := repo.Measurements(ctx, assay.ID, measurement.Filter{Parameters: []string{"Area"}, Conditions: []string{"KO"}})
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 20.0, areas[0].Value)

	conditions, err := repo.Conditions(ctx, assay.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"KO", "WT"}, conditions)

	params, err := repo.Parameters(ctx, assay.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Area", "Length"}, params)

	count, err := repo.MeasurementCount(ctx, assay.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	frame, used, err := measurement.ToFrame(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Area", "Length"}, used)
	assert.Equal(t, 3, frame.Rows())
}

func TestDuplicateSourceIsSkipped(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	assay, err := repo.CreateAssay(ctx, "dup", "")
	require.NoError(t, err)

	tbl := table("1_WT_1.csv", []string{"Area"}, []float64{1}, []float64{2})
	n, err := repo.InsertTable(ctx, assay.ID, "WT", tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.InsertTable(ctx, assay.ID, "WT", tbl)
	require.NoError(t, err)
	assert.Zero(t, n)

	// same file under another condition is a different source
	n, err = repo.InsertTable(ctx, assay.ID, "KO", tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := repo.MeasurementCount(ctx, assay.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestConcurrentDuplicateInsertsStoreOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	assay, err := repo.CreateAssay(ctx, "race", "")
	require.NoError(t, err)

	tbl := table("1_WT_1.csv", []string{"Area"}, []float64{1}, []float64{2}, []float64{3})
	var inserted int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 6; i++ {
		g.Go(func() error {
			n, err := repo.InsertTable(gctx, assay.ID, "WT", tbl)
			atomic.AddInt64(&inserted, int64(n))
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(3), inserted)

	count, err := repo.MeasurementCount(ctx, assay.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDatabaseFailuresCarryCode(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	repo := NewMeasurementRepository(db)

	_, err = repo.GetAssay(ctx, 42)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	require.NoError(t, db.Close())
	_, err = repo.ListAssays(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
	_, err = repo.InsertTable(ctx, 1, "WT", table("x.csv", []string{"A"}, []float64{1}))
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestInsertRequiresCondition(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.InsertTable(context.Background(), 1, "", table("x.csv", []string{"A"}, []float64{1}))
	assert.True(t, core.IsValidationError(err))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.Error(t, err)
}
