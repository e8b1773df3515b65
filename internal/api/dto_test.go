package api

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromorph/domain/comparison"
)

func TestReportDTONonFiniteValuesBecomeNull(t *testing.T) {
	forced := true
	r := &comparison.ComparisonReport{
		ValueColumn:      "Area",
		GroupColumn:      "condition",
		Alpha:            0.05,
		GroupNames:       []string{"a", "b"},
		ForcedParametric: &forced,
		IsParametric:     true,
		Descriptives: []comparison.Descriptives{
			{Group: "a", N: 1, Mean: 2, Std: math.NaN(), Median: 2, Min: 2, Max: 2, Q25: 2, Q75: 2},
			{Group: "b", N: 3, Mean: 5, Std: 0, Median: 5, Min: 5, Max: 5, Q25: 5, Q75: 5},
		},
		MainTest: comparison.MainTestResult{
			Kind:        comparison.KindWelchT,
			TestName:    "Welch's t-test",
			Statistic:   math.Inf(-1),
			PValue:      0,
			Alpha:       0.05,
			Significant: true,
			Details: comparison.TTestDetails{
				DegreesOfFreedom: math.NaN(),
				MeanDifference:   -3,
				CohensD:          math.NaN(),
			},
		},
	}

	dto := NewReportDTO("r1", r)
	data, err := json.Marshal(dto)
	require.NoError(t, err)

	assert.Nil(t, dto.Descriptives[0].Std)
	assert.Nil(t, dto.Descriptives[0].SEM)
	require.NotNil(t, dto.Descriptives[1].Std)
	assert.Equal(t, 0.0, *dto.Descriptives[1].Std)
	assert.Nil(t, dto.MainTest.Statistic)
	require.NotNil(t, dto.MainTest.PValue)
	assert.Equal(t, "Cohen's d", dto.MainTest.EffectSizeName)
	assert.Nil(t, dto.MainTest.EffectSize)
	assert.Nil(t, dto.PostHoc, "post-hoc was not attempted")
	assert.Equal(t, "***", dto.MainTest.Stars)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	main := decoded["main_test"].(map[string]any)
	assert.Nil(t, main["statistic"])
	assert.Equal(t, true, decoded["forced_parametric"])
	_, hasPostHoc := decoded["post_hoc"]
	assert.True(t, hasPostHoc)
}

func TestBatchDTO(t *testing.T) {
	r := &comparison.ComparisonReport{
		ValueColumn: "Area",
		GroupNames:  []string{"a", "b"},
		MainTest:    comparison.MainTestResult{Kind: comparison.KindMannWhitneyU, PValue: 0.2},
	}
	b := &comparison.BatchReport{
		GroupColumn: "condition",
		Parameters:  []string{"Area"},
		Reports:     map[string]*comparison.ComparisonReport{"Area": r},
		Skipped:     []string{"Volume"},
		Failures:    []comparison.ParameterFailure{{Parameter: "Length", Err: assert.AnError}},
	}
	dto := NewBatchDTO("b1", 7, b)
	assert.Equal(t, int64(7), dto.AssayID)
	assert.Empty(t, dto.Significant)
	assert.Equal(t, "b1/Area", dto.Reports["Area"].ID)
	require.Len(t, dto.Failures, 1)
	assert.Equal(t, assert.AnError.Error(), dto.Failures[0].Error)
	assert.Empty(t, dto.Reports["Area"].MainTest.Stars)
}
