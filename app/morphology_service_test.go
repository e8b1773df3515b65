package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
)

func row(cond, file string, r int, param string, v float64) measurement.Measurement {
	return measurement.Measurement{SourceFile: file, Condition: cond, Row: r, Parameter: param, Value: v}
}

func TestRankRepresentative(t *testing.T) {
	rows := []measurement.Measurement{
		row("WT", "1_WT_1.csv", 0, "Area", 10),
		row("WT", "1_WT_1.csv", 1, "Area", 12),
		row("WT", "1_WT_2.csv", 0, "Area", 20),
		row("WT", "1_WT_3.csv", 0, "Area", 9),
		row("WT", "1_WT_3.csv", 0, "Volume", 99),
	}

	raw := RankRepresentative(rows, []string{"Area"}, false)
	require.Equal(t, []string{"WT"}, raw.Conditions)
	files := raw.Files["WT"]
	require.Len(t, files, 3)
	assert.Equal(t, "1_WT_1.csv", files[0].File)
	assert.Equal(t, 1, files[0].Rank)
	assert.Equal(t, 2, files[0].Measurements)
	assert.InDelta(t, 1.75, files[0].Distance, 1e-12)
	assert.Equal(t, "1_WT_3.csv", files[1].File)
	assert.InDelta(t, 3.75, files[1].Distance, 1e-12)
	assert.Equal(t, "1_WT_2.csv", files[2].File)
	assert.Equal(t, 3, files[2].Rank)

	// sample SD of 10, 12, 20, 9
	sd := math.Sqrt(74.75 / 3)
	z := RankRepresentative(rows, []string{"Area"}, true)
	assert.True(t, z.Normalized)
	assert.InDelta(t, 1.75/sd, z.Files["WT"][0].Distance, 1e-12)
	assert.Equal(t, "1_WT_1.csv", z.Files["WT"][0].File)

	assert.Len(t, raw.Top("WT", 2), 2)
	assert.Len(t, raw.Top("WT", 0), 3)
	assert.Empty(t, raw.Top("KO", 3))
}

func TestRankRepresentativeMissingParameter(t *testing.T) {
	rows := []measurement.Measurement{
		row("KO", "1_KO_2.csv", 0, "Area", 8),
		row("KO", "1_KO_1.csv", 0, "Area", 5),
		row("KO", "1_KO_1.csv", 0, "Length", 1),
	}
	res := RankRepresentative(rows, []string{"Area", "Length"}, true)
	files := res.Files["KO"]
	require.Len(t, files, 2)

	// the file without Length takes the condition average, so both files
	// sit the same distance away and ties go by name
	assert.Equal(t, "1_KO_1.csv", files[0].File)
	assert.Equal(t, "1_KO_2.csv", files[1].File)
	assert.InDelta(t, files[0].Distance, files[1].Distance, 1e-12)
	assert.InDelta(t, 1.5/math.Sqrt(4.5), files[0].Distance, 1e-12)
}

func TestComputeDensity(t *testing.T) {
	var rows []measurement.Measurement
	for r := 0; r < 3; r++ {
		rows = append(rows, row("WT", "a.csv", r, "Area", 1), row("WT", "a.csv", r, "Length", 1))
	}
	rows = append(rows, row("WT", "b.csv", 0, "Area", 1))
	rows = append(rows, row("KO", "c.csv", 0, "Area", 1), row("KO", "c.csv", 1, "Area", 1))

	res := ComputeDensity(rows, 2)
	require.Len(t, res.Images, 3)
	assert.Equal(t, "KO", res.Images[0].Condition)
	assert.Equal(t, 2, res.Images[0].Count)
	assert.InDelta(t, 1.0, res.Images[0].Density, 1e-12)
	assert.InDelta(t, 1e6, res.Images[0].PerMM2, 1e-6)
	assert.InDelta(t, 100, res.Images[0].Per100UM2, 1e-9)
	assert.Equal(t, "a.csv", res.Images[1].File)
	assert.Equal(t, 3, res.Images[1].Count)
	assert.InDelta(t, 1.5, res.Images[1].Density, 1e-12)

	require.Len(t, res.Conditions, 2)
	ko, wt := res.Conditions[0], res.Conditions[1]
	assert.Equal(t, 1, ko.Images)
	assert.True(t, math.IsNaN(ko.SD))
	assert.Equal(t, "WT", wt.Condition)
	assert.Equal(t, 2, wt.Images)
	assert.Equal(t, 4, wt.Count)
	assert.InDelta(t, 1.0, wt.Density, 1e-12)
	assert.InDelta(t, 1.0, wt.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), wt.SD, 1e-12)
}

func TestMorphologyService(t *testing.T) {
	repo := newRepository(t)
	assayID := seedAssay(t, repo)
	svc := NewMorphologyService(repo)
	ctx := context.Background()

	rep, err := svc.RepresentativeFiles(ctx, assayID, []string{"Area", "Volume"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Area"}, rep.Parameters)
	assert.Equal(t, []string{"Het", "KO", "WT"}, rep.Conditions)
	for _, c := range rep.Conditions {
		require.Len(t, rep.Files[c], 1)
		assert.Equal(t, 8, rep.Files[c][0].Measurements)
		assert.InDelta(t, 0, rep.Files[c][0].Distance, 1e-9)
	}

	dens, err := svc.Density(ctx, assayID, DefaultImageArea)
	require.NoError(t, err)
	require.Len(t, dens.Images, 3)
	for _, img := range dens.Images {
		assert.Equal(t, 8, img.Count)
		assert.InDelta(t, 8/12.26470441, img.Density, 1e-6)
	}

	_, err = svc.RepresentativeFiles(ctx, assayID, []string{"Volume"}, true)
	assert.True(t, core.IsValidationError(err))
	_, err = svc.Density(ctx, assayID, 0)
	assert.True(t, core.IsValidationError(err))
	_, err = svc.Density(ctx, 999, DefaultImageArea)
	assert.ErrorIs(t, err, core.ErrAssayNotFound)
	_, err = svc.RepresentativeFiles(ctx, 999, nil, true)
	assert.ErrorIs(t, err, core.ErrAssayNotFound)
}
