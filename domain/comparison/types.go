package comparison

import (
	"math"

	"neuromorph/domain/core"
)

// TestKind identifies a hypothesis test family
type TestKind string

const (
	KindPooledT       TestKind = "pooled_t"
	KindWelchT        TestKind = "welch_t"
	KindMannWhitneyU  TestKind = "mann_whitney_u"
	KindOneWayANOVA   TestKind = "one_way_anova"
	KindKruskalWallis TestKind = "kruskal_wallis"
	KindFriedman      TestKind = "friedman"
	KindTwoWayANOVA   TestKind = "two_way_anova"
)

// DisplayName returns the name used in reports and exports
func (k TestKind) DisplayName() string {
	switch k {
	case KindPooledT:
		return "Independent t-test"
	case KindWelchT:
		return "Welch's t-test"
	case KindMannWhitneyU:
		return "Mann-Whitney U test"
	case KindOneWayANOVA:
		return "One-way ANOVA"
	case KindKruskalWallis:
		return "Kruskal-Wallis H test"
	case KindFriedman:
		return "Friedman test"
	case KindTwoWayANOVA:
		return "Two-way ANOVA"
	default:
		return string(k)
	}
}

// IsOmnibus reports whether the kind compares more than two groups at once
func (k TestKind) IsOmnibus() bool {
	return k == KindOneWayANOVA || k == KindKruskalWallis
}

// IsParametric reports whether the kind assumes normally distributed groups
func (k TestKind) IsParametric() bool {
	switch k {
	case KindPooledT, KindWelchT, KindOneWayANOVA, KindTwoWayANOVA:
		return true
	}
	return false
}

// ParseTestKind maps a kind name back to its TestKind
func ParseTestKind(s string) (TestKind, error) {
	switch k := TestKind(s); k {
	case KindPooledT, KindWelchT, KindMannWhitneyU, KindOneWayANOVA,
		KindKruskalWallis, KindFriedman, KindTwoWayANOVA:
		return k, nil
	}
	return "", core.NewUnsupportedTestError(s)
}

// NormalityMethod selects the normality test
type NormalityMethod string

const (
	NormalityShapiro NormalityMethod = "shapiro"
	NormalityKS      NormalityMethod = "kstest"
)

// TestName returns the display name of the normality test
func (m NormalityMethod) TestName() string {
	switch m {
	case NormalityShapiro:
		return "Shapiro-Wilk"
	case NormalityKS:
		return "Kolmogorov-Smirnov"
	default:
		return string(m)
	}
}

// Valid reports whether m is a supported method
func (m NormalityMethod) Valid() bool {
	return m == NormalityShapiro || m == NormalityKS
}

// NormalityVerdict is the outcome of one normality test on one group.
// Statistic and PValue are NaN when the test could not be run.
type NormalityVerdict struct {
	Group     string
	Method    NormalityMethod
	TestName  string
	Statistic float64
	PValue    float64
	IsNormal  bool
}

// MannWhitneyMethod records how a Mann-Whitney p-value was obtained
type MannWhitneyMethod string

const (
	MethodExact      MannWhitneyMethod = "exact"
	MethodAsymptotic MannWhitneyMethod = "asymptotic"
)

// GroupMoments summarizes one group for the parametric tests
type GroupMoments struct {
	Group string
	N     int
	Mean  float64
	Std   float64
}

// GroupRanks summarizes one group for the rank tests
type GroupRanks struct {
	Group  string
	N      int
	Median float64
}

// TestDetails is the kind-specific payload of a MainTestResult
type TestDetails interface {
	testDetails()
}

// TTestDetails accompanies pooled and Welch t-tests
type TTestDetails struct {
	EqualVariance    bool
	DegreesOfFreedom float64
	MeanDifference   float64
	CohensD          float64
	Group1           GroupMoments
	Group2           GroupMoments
}

// MannWhitneyDetails accompanies the Mann-Whitney U test
type MannWhitneyDetails struct {
	Method MannWhitneyMethod
	Group1 GroupRanks
	Group2 GroupRanks
}

// ANOVADetails accompanies the one-way ANOVA
type ANOVADetails struct {
	DFBetween  float64
	DFWithin   float64
	SSBetween  float64
	SSWithin   float64
	EtaSquared float64
	Groups     []GroupMoments
}

// KruskalWallisDetails accompanies the Kruskal-Wallis H test
type KruskalWallisDetails struct {
	DF     float64
	Groups []GroupRanks
}

// FriedmanDetails accompanies the Friedman test
type FriedmanDetails struct {
	DF       float64
	Subjects int
	Groups   []string
}

func (TTestDetails) testDetails()         {}
func (MannWhitneyDetails) testDetails()   {}
func (ANOVADetails) testDetails()         {}
func (KruskalWallisDetails) testDetails() {}
func (FriedmanDetails) testDetails()      {}

// MainTestResult is the outcome of the main hypothesis test
type MainTestResult struct {
	Kind        TestKind
	TestName    string
	Statistic   float64
	PValue      float64
	Alpha       float64
	Significant bool
	Details     TestDetails
}

// EffectSize returns Cohen's d for t-tests and eta squared for ANOVA.
// Rank tests carry no effect size.
func (r MainTestResult) EffectSize() (float64, bool) {
	switch d := r.Details.(type) {
	case TTestDetails:
		return d.CohensD, true
	case ANOVADetails:
		return d.EtaSquared, true
	}
	return 0, false
}

// EffectSizeName names the effect size returned by EffectSize
func (r MainTestResult) EffectSizeName() string {
	switch r.Details.(type) {
	case TTestDetails:
		return "Cohen's d"
	case ANOVADetails:
		return "eta squared"
	}
	return ""
}

// Interval is a closed confidence interval
type Interval struct {
	Lower float64
	Upper float64
}

// PostHocResult is one pairwise comparison after a significant omnibus test
type PostHocResult struct {
	Group1             string
	Group2             string
	Method             string
	MeanDifference     float64 // mean(Group2) - mean(Group1)
	Statistic          float64
	PValue             float64
	Significant        bool
	ConfidenceInterval *Interval
}

// Pair returns the (Group1, Group2) key in group order. It is not
// sorted, so MeanDifference keeps its sign relative to the key.
func (p PostHocResult) Pair() [2]string {
	return [2]string{p.Group1, p.Group2}
}

// Descriptives are the per-group summary statistics.
// Std is the sample standard deviation and is NaN for n < 2.
type Descriptives struct {
	Group  string
	N      int
	Mean   float64
	Std    float64
	Median float64
	Min    float64
	Max    float64
	Q25    float64
	Q75    float64
}

// SEM returns the standard error of the mean
func (d Descriptives) SEM() float64 {
	return d.Std / math.Sqrt(float64(d.N))
}

// TraceEntry records one executed pipeline stage
type TraceEntry struct {
	Stage  string
	Detail string
}

// Pipeline stages
const (
	StageDescribe  = "describe"
	StageNormality = "normality"
	StageSelect    = "select"
	StageMainTest  = "main_test"
	StagePostHoc   = "post_hoc"
	StageAggregate = "aggregate"
)

// Stars maps a p-value to the plot annotation convention
func Stars(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}
