package engine

import (
	"fmt"
	"strings"

	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// CompareOption adjusts a single Compare call
type CompareOption func(*compareConfig)

type compareConfig struct {
	method comparison.NormalityMethod
}

// UsingNormality selects the normality test for one call
func UsingNormality(m comparison.NormalityMethod) CompareOption {
	return func(c *compareConfig) { c.method = m }
}

// Compare groups valueColumn by groupColumn and runs the full pipeline.
// A non-nil forced skips normality testing and fixes the branch.
func (e *Engine) Compare(frame *comparison.Frame, valueColumn, groupColumn string, forced *bool, opts ...CompareOption) (*comparison.ComparisonReport, error) {
	groups, err := comparison.GroupBy(frame, valueColumn, groupColumn)
	if err != nil {
		return nil, err
	}
	report, err := e.CompareGroups(groups, forced, opts...)
	if err != nil {
		return nil, err
	}
	report.ValueColumn = valueColumn
	report.GroupColumn = groupColumn
	return report, nil
}

// CompareGroups runs describe, normality, selection, main test, post-hoc
// and aggregation over an existing group set. Any stage failure aborts
// the comparison.
func (e *Engine) CompareGroups(groups comparison.GroupSet, forced *bool, opts ...CompareOption) (*comparison.ComparisonReport, error) {
	cc := compareConfig{method: e.cfg.NormalityMethod}
	for _, opt := range opts {
		opt(&cc)
	}

	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Label == "" {
			return nil, core.NewValidationError("group", "label cannot be empty")
		}
		if seen[g.Label] {
			return nil, core.NewValidationError(g.Label, "duplicate group label")
		}
		seen[g.Label] = true
	}

	// a label with no valid observation is not a group
	present := make(comparison.GroupSet, 0, len(groups))
	for _, g := range groups {
		if x := dropNaN(g.Sample); len(x) > 0 {
			present = append(present, comparison.Group{Label: g.Label, Sample: x})
		}
	}
	if len(present) < 2 {
		return nil, core.NewInvalidGroupCountError(len(present))
	}

	report := &comparison.ComparisonReport{
		Alpha:            e.cfg.Alpha,
		GroupNames:       present.Labels(),
		ForcedParametric: copyBool(forced),
	}
	trace := func(stage, format string, args ...any) {
		report.Trace = append(report.Trace, comparison.TraceEntry{Stage: stage, Detail: fmt.Sprintf(format, args...)})
	}

	report.Descriptives = DescribeGroups(present)
	total := 0
	for _, d := range report.Descriptives {
		total += d.N
	}
	trace(comparison.StageDescribe, "%d groups, %d observations", len(present), total)

	if forced == nil {
		verdicts, err := e.ClassifyGroups(present, cc.method)
		if err != nil {
			return nil, err
		}
		report.NormalityVerdicts = verdicts
		var failing []string
		for _, v := range verdicts {
			if !v.IsNormal {
				failing = append(failing, v.Group)
			}
		}
		if len(failing) == 0 {
			trace(comparison.StageNormality, "%s: all groups normal", cc.method.TestName())
		} else {
			trace(comparison.StageNormality, "%s: not normal: %s", cc.method.TestName(), strings.Join(failing, ", "))
		}
	}

	parametric, kind, err := SelectTest(len(present), report.NormalityVerdicts, forced, e.cfg.EqualVariance)
	if err != nil {
		return nil, err
	}
	report.IsParametric = parametric
	if forced != nil {
		trace(comparison.StageSelect, "%s (forced parametric=%t)", kind.DisplayName(), *forced)
	} else {
		trace(comparison.StageSelect, "%s (parametric=%t)", kind.DisplayName(), parametric)
	}

	main, err := e.Execute(kind, present)
	if err != nil {
		return nil, err
	}
	report.MainTest = main
	trace(comparison.StageMainTest, "statistic=%.4f p=%.4e significant=%t", main.Statistic, main.PValue, main.Significant)

	postHoc, err := e.PostHoc(present, kind, main.Significant)
	if err != nil {
		return nil, err
	}
	if postHoc != nil {
		report.PostHoc = postHoc
		sig := 0
		for _, p := range postHoc {
			if p.Significant {
				sig++
			}
		}
		method := MethodMannWhitney
		if kind == comparison.KindOneWayANOVA {
			method = MethodTukeyHSD
		}
		trace(comparison.StagePostHoc, "%s: %d of %d pairs significant", method, sig, len(postHoc))
	}

	trace(comparison.StageAggregate, "report complete")
	return report, nil
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
