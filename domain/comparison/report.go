package comparison

import (
	"neuromorph/domain/core"
)

// ComparisonReport is the complete, immutable outcome of one comparison
type ComparisonReport struct {
	ValueColumn       string
	GroupColumn       string
	Alpha             float64
	GroupNames        []string
	Descriptives      []Descriptives
	NormalityVerdicts []NormalityVerdict // empty when parametric was forced
	ForcedParametric  *bool
	IsParametric      bool
	MainTest          MainTestResult
	PostHoc           []PostHocResult // nil when not attempted
	Trace             []TraceEntry
}

// PostHocAttempted distinguishes "not run" from "run with no rows"
func (r *ComparisonReport) PostHocAttempted() bool {
	return r.PostHoc != nil
}

// Descriptive returns the descriptives for one group
func (r *ComparisonReport) Descriptive(group string) (Descriptives, bool) {
	for _, d := range r.Descriptives {
		if d.Group == group {
			return d, true
		}
	}
	return Descriptives{}, false
}

// Fingerprint hashes every label and statistic in the report. Two runs over
// the same input and configuration produce the same fingerprint.
func (r *ComparisonReport) Fingerprint() core.Hash {
	h := core.NewHasher().
		String(r.ValueColumn).
		String(r.GroupColumn).
		Float(r.Alpha).
		Bool(r.IsParametric).
		Bool(r.ForcedParametric != nil)
	if r.ForcedParametric != nil {
		h.Bool(*r.ForcedParametric)
	}

	h.Int(len(r.GroupNames))
	for _, name := range r.GroupNames {
		h.String(name)
	}

	h.Int(len(r.Descriptives))
	for _, d := range r.Descriptives {
		h.String(d.Group).Int(d.N).Float(d.Mean).Float(d.Std).Float(d.Median).Float(d.Min).Float(d.Max).Float(d.Q25).Float(d.Q75)
	}

	h.Int(len(r.NormalityVerdicts))
	for _, v := range r.NormalityVerdicts {
		h.String(v.Group).String(string(v.Method)).Float(v.Statistic).Float(v.PValue).Bool(v.IsNormal)
	}

	m := r.MainTest
	h.String(string(m.Kind)).String(m.TestName).Float(m.Statistic).Float(m.PValue).Float(m.Alpha).Bool(m.Significant)
	hashDetails(h, m.Details)

	h.Bool(r.PostHoc != nil).Int(len(r.PostHoc))
	for _, p := range r.PostHoc {
		h.String(p.Group1).String(p.Group2).String(p.Method).
			Float(p.MeanDifference).Float(p.Statistic).Float(p.PValue).Bool(p.Significant).
			Bool(p.ConfidenceInterval != nil)
		if p.ConfidenceInterval != nil {
			h.Float(p.ConfidenceInterval.Lower).Float(p.ConfidenceInterval.Upper)
		}
	}

	h.Int(len(r.Trace))
	for _, t := range r.Trace {
		h.String(t.Stage).String(t.Detail)
	}
	return h.Sum()
}

func hashMoments(h *core.Hasher, g GroupMoments) {
	h.String(g.Group).Int(g.N).Float(g.Mean).Float(g.Std)
}

func hashRanks(h *core.Hasher, g GroupRanks) {
	h.String(g.Group).Int(g.N).Float(g.Median)
}

func hashDetails(h *core.Hasher, details TestDetails) {
	switch d := details.(type) {
	case TTestDetails:
		h.String("t").Bool(d.EqualVariance).Float(d.DegreesOfFreedom).Float(d.MeanDifference).Float(d.CohensD)
		hashMoments(h, d.Group1)
		hashMoments(h, d.Group2)
	case MannWhitneyDetails:
		h.String("mwu").String(string(d.Method))
		hashRanks(h, d.Group1)
		hashRanks(h, d.Group2)
	case ANOVADetails:
		h.String("anova").Float(d.DFBetween).Float(d.DFWithin).Float(d.SSBetween).Float(d.SSWithin).Float(d.EtaSquared)
		for _, g := range d.Groups {
			hashMoments(h, g)
		}
	case KruskalWallisDetails:
		h.String("kw").Float(d.DF)
		for _, g := range d.Groups {
			hashRanks(h, g)
		}
	case FriedmanDetails:
		h.String("friedman").Float(d.DF).Int(d.Subjects)
		for _, g := range d.Groups {
			h.String(g)
		}
	default:
		h.String("none")
	}
}

// ParameterFailure records a parameter whose comparison failed
type ParameterFailure struct {
	Parameter string
	Err       error
}

// BatchReport is the outcome of comparing several parameters over the same groups
type BatchReport struct {
	GroupColumn string
	Parameters  []string // parameters with a report, in request order
	Reports     map[string]*ComparisonReport
	Skipped     []string // parameters with no data
	Failures    []ParameterFailure
}

// Significant returns the parameters whose main test was significant, in order
func (b *BatchReport) Significant() []string {
	var out []string
	for _, p := range b.Parameters {
		if r := b.Reports[p]; r != nil && r.MainTest.Significant {
			out = append(out, p)
		}
	}
	return out
}

// EffectType distinguishes main effects from interactions
type EffectType string

const (
	EffectMain        EffectType = "main"
	EffectInteraction EffectType = "interaction"
)

// Effect is one row of a two-way ANOVA table
type Effect struct {
	Name        string
	Type        EffectType
	DF          float64
	SumSq       float64
	F           float64
	PValue      float64
	Significant bool
}

// TwoWayResult is a type II two-way ANOVA table
type TwoWayResult struct {
	ValueColumn   string
	Factor1       string
	Factor2       string
	Alpha         float64
	Levels1       []string
	Levels2       []string
	Effects       []Effect // factor1, factor2, interaction
	ResidualDF    float64
	ResidualSumSq float64
	N             int
}

// Effect returns the effect row with the given name
func (t *TwoWayResult) Effect(name string) (Effect, bool) {
	for _, e := range t.Effects {
		if e.Name == name {
			return e, true
		}
	}
	return Effect{}, false
}
