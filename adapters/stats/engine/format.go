package engine

import (
	"fmt"
	"math"
	"strings"

	"neuromorph/domain/comparison"
)

var rule = strings.Repeat("=", 70)
var thinRule = strings.Repeat("-", 70)

func analysisType(parametric bool) string {
	if parametric {
		return "Parametric"
	}
	return "Non-parametric"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// detailLines renders the kind-specific payload as key/value lines
func detailLines(d comparison.TestDetails) [][2]string {
	f := func(v float64) string { return fmt.Sprintf("%.4f", v) }
	switch d := d.(type) {
	case comparison.TTestDetails:
		return [][2]string{
			{"equal variance", fmt.Sprintf("%t", d.EqualVariance)},
			{"degrees of freedom", f(d.DegreesOfFreedom)},
			{"mean difference", f(d.MeanDifference)},
			{"Cohen's d", f(d.CohensD)},
			{d.Group1.Group + " mean ± SD (n)", fmt.Sprintf("%.4f ± %.4f (%d)", d.Group1.Mean, d.Group1.Std, d.Group1.N)},
			{d.Group2.Group + " mean ± SD (n)", fmt.Sprintf("%.4f ± %.4f (%d)", d.Group2.Mean, d.Group2.Std, d.Group2.N)},
		}
	case comparison.MannWhitneyDetails:
		return [][2]string{
			{"method", string(d.Method)},
			{d.Group1.Group + " median (n)", fmt.Sprintf("%.4f (%d)", d.Group1.Median, d.Group1.N)},
			{d.Group2.Group + " median (n)", fmt.Sprintf("%.4f (%d)", d.Group2.Median, d.Group2.N)},
		}
	case comparison.ANOVADetails:
		return [][2]string{
			{"df between", f(d.DFBetween)},
			{"df within", f(d.DFWithin)},
			{"eta squared", f(d.EtaSquared)},
		}
	case comparison.KruskalWallisDetails:
		return [][2]string{{"df", f(d.DF)}}
	case comparison.FriedmanDetails:
		return [][2]string{
			{"df", f(d.DF)},
			{"subjects", fmt.Sprintf("%d", d.Subjects)},
			{"groups", strings.Join(d.Groups, ", ")},
		}
	}
	return nil
}

// FormatSummary renders a report as plain text
func FormatSummary(r *comparison.ComparisonReport) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(rule)
	line("STATISTICAL ANALYSIS SUMMARY")
	line(rule)
	if r.ValueColumn != "" {
		line("\nParameter: %s", r.ValueColumn)
	}
	line("\nGroups compared: %d", len(r.GroupNames))
	line("Group names: %s", strings.Join(r.GroupNames, ", "))
	line("Analysis type: %s", analysisType(r.IsParametric))

	line("\nDescriptive Statistics:")
	line(thinRule)
	for _, d := range r.Descriptives {
		line("\n%s:", d.Group)
		line("  n = %d", d.N)
		line("  Mean ± SD: %.3f ± %.3f", d.Mean, d.Std)
		line("  Median: %.3f", d.Median)
		line("  Range: [%.3f, %.3f]", d.Min, d.Max)
	}

	if len(r.NormalityVerdicts) > 0 {
		line("\nNormality Tests:")
		line(thinRule)
		for _, v := range r.NormalityVerdicts {
			status := "Not normal"
			if v.IsNormal {
				status = "Normal"
			}
			line("%s: %s (%s, p=%.4f)", v.Group, status, v.TestName, v.PValue)
		}
	}

	m := r.MainTest
	line("\nMain Statistical Test:")
	line(thinRule)
	sig := "not significant"
	if m.Significant {
		sig = "significant"
	}
	line("%s: statistic=%.4f, p=%.4f (%s)", m.TestName, m.Statistic, m.PValue, sig)
	for _, kv := range detailLines(m.Details) {
		line("  %s: %s", kv[0], kv[1])
	}

	if len(r.PostHoc) > 0 {
		line("\nPost-hoc Tests (%s):", r.PostHoc[0].Method)
		line(thinRule)
		for _, p := range r.PostHoc {
			mark := "ns"
			if p.Significant {
				mark = "***"
				if s := comparison.Stars(p.PValue); s != "" {
					mark = s
				}
			}
			line("%s vs %s: p=%.4f %s", p.Group1, p.Group2, p.PValue, mark)
		}
	} else if r.PostHocAttempted() {
		line("\nPost-hoc Tests: no pairs")
	}

	line("\n" + rule)
	return b.String()
}

func mdNum(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

func mdP(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4e", v)
}

// FormatMarkdown renders a report as Markdown
func FormatMarkdown(r *comparison.ComparisonReport) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	title := "Statistical comparison"
	if r.ValueColumn != "" {
		title = fmt.Sprintf("%s by %s", r.ValueColumn, r.GroupColumn)
	}
	line("# %s", title)
	line("")
	line("- Groups: %s", strings.Join(r.GroupNames, ", "))
	line("- Analysis: %s", analysisType(r.IsParametric))
	line("- Alpha: %g", r.Alpha)
	line("")

	line("## Descriptive statistics")
	line("")
	line("| Group | N | Mean | SD | Median | Min | Max |")
	line("|---|---|---|---|---|---|---|")
	for _, d := range r.Descriptives {
		line("| %s | %d | %s | %s | %s | %s | %s |", d.Group, d.N, mdNum(d.Mean), mdNum(d.Std), mdNum(d.Median), mdNum(d.Min), mdNum(d.Max))
	}
	line("")

	if len(r.NormalityVerdicts) > 0 {
		line("## Normality")
		line("")
		line("| Group | Test | Statistic | P-value | Normal |")
		line("|---|---|---|---|---|")
		for _, v := range r.NormalityVerdicts {
			line("| %s | %s | %s | %s | %s |", v.Group, v.TestName, mdNum(v.Statistic), mdP(v.PValue), yesNo(v.IsNormal))
		}
		line("")
	}

	m := r.MainTest
	line("## %s", m.TestName)
	line("")
	line("- Statistic: %s", mdNum(m.Statistic))
	line("- P-value: %s %s", mdP(m.PValue), comparison.Stars(m.PValue))
	line("- Significant: %s", yesNo(m.Significant))
	if es, ok := m.EffectSize(); ok {
		line("- %s: %s", m.EffectSizeName(), mdNum(es))
	}
	line("")

	if r.PostHocAttempted() {
		line("## Post-hoc comparisons")
		line("")
		line("| Group 1 | Group 2 | Mean diff | P-value | Significant | CI |")
		line("|---|---|---|---|---|---|")
		for _, p := range r.PostHoc {
			ci := "-"
			if p.ConfidenceInterval != nil {
				ci = fmt.Sprintf("[%s, %s]", mdNum(p.ConfidenceInterval.Lower), mdNum(p.ConfidenceInterval.Upper))
			}
			line("| %s | %s | %s | %s %s | %s | %s |", p.Group1, p.Group2, mdNum(p.MeanDifference), mdP(p.PValue), comparison.Stars(p.PValue), yesNo(p.Significant), ci)
		}
		line("")
	}

	if len(r.Trace) > 0 {
		line("## Decision trace")
		line("")
		for i, t := range r.Trace {
			line("%d. **%s**: %s", i+1, t.Stage, t.Detail)
		}
	}
	return b.String()
}

// FormatBatchSummary renders the multi-parameter summary
func FormatBatchSummary(b *comparison.BatchReport) string {
	var sb strings.Builder
	fmt.Fprintln(&sb, rule)
	fmt.Fprintln(&sb, "Multi-Parameter Comparison Summary")
	fmt.Fprintln(&sb, rule)
	fmt.Fprintf(&sb, "Total parameters tested: %d\n", len(b.Parameters))
	sig := b.Significant()
	fmt.Fprintf(&sb, "Significant differences: %d\n", len(sig))
	if len(sig) > 0 {
		fmt.Fprintln(&sb, "\nSignificant parameters:")
		for _, p := range sig {
			fmt.Fprintf(&sb, "  %s: p=%.4f\n", p, b.Reports[p].MainTest.PValue)
		}
	}
	if len(b.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped (no data): %s\n", strings.Join(b.Skipped, ", "))
	}
	if len(b.Failures) > 0 {
		fmt.Fprintln(&sb, "\nFailed:")
		for _, f := range b.Failures {
			fmt.Fprintf(&sb, "  %s: %v\n", f.Parameter, f.Err)
		}
	}
	return sb.String()
}
