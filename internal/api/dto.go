package api

import (
	"math"

	"neuromorph/app"
	"neuromorph/domain/comparison"
	"neuromorph/domain/measurement"
)

// JSON has no NaN or Inf, so non-finite statistics are sent as null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type DescriptivesDTO struct {
	Group  string   `json:"group"`
	N      int      `json:"n"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	SEM    *float64 `json:"sem"`
	Median *float64 `json:"median"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Q25    *float64 `json:"q25"`
	Q75    *float64 `json:"q75"`
}

type NormalityDTO struct {
	Group     string   `json:"group"`
	Method    string   `json:"method"`
	TestName  string   `json:"test_name"`
	Statistic *float64 `json:"statistic"`
	PValue    *float64 `json:"p_value"`
	IsNormal  bool     `json:"is_normal"`
}

type MainTestDTO struct {
	Kind           string         `json:"kind"`
	TestName       string         `json:"test_name"`
	Statistic      *float64       `json:"statistic"`
	PValue         *float64       `json:"p_value"`
	Alpha          float64        `json:"alpha"`
	Significant    bool           `json:"significant"`
	Stars          string         `json:"stars"`
	EffectSizeName string         `json:"effect_size_name,omitempty"`
	EffectSize     *float64       `json:"effect_size,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

type PostHocDTO struct {
	Group1         string     `json:"group1"`
	Group2         string     `json:"group2"`
	Method         string     `json:"method"`
	MeanDifference *float64   `json:"mean_difference"`
	Statistic      *float64   `json:"statistic"`
	PValue         *float64   `json:"p_value"`
	Significant    bool       `json:"significant"`
	Stars          string     `json:"stars"`
	CI             []*float64 `json:"confidence_interval,omitempty"`
}

type TraceDTO struct {
	Stage  string `json:"stage"`
	Detail string `json:"detail"`
}

type ReportDTO struct {
	ID           string            `json:"id"`
	Fingerprint  string            `json:"fingerprint"`
	ValueColumn  string            `json:"value_column"`
	GroupColumn  string            `json:"group_column"`
	Alpha        float64           `json:"alpha"`
	Groups       []string          `json:"groups"`
	IsParametric bool              `json:"is_parametric"`
	Forced       *bool             `json:"forced_parametric,omitempty"`
	Descriptives []DescriptivesDTO `json:"descriptives"`
	Normality    []NormalityDTO    `json:"normality,omitempty"`
	MainTest     MainTestDTO       `json:"main_test"`
	PostHoc      []PostHocDTO      `json:"post_hoc"`
	Trace        []TraceDTO        `json:"trace"`
}

type FailureDTO struct {
	Parameter string `json:"parameter"`
	Error     string `json:"error"`
}

type BatchDTO struct {
	ID          string               `json:"id"`
	AssayID     int64                `json:"assay_id,omitempty"`
	GroupColumn string               `json:"group_column"`
	Parameters  []string             `json:"parameters"`
	Significant []string             `json:"significant"`
	Skipped     []string             `json:"skipped,omitempty"`
	Failures    []FailureDTO         `json:"failures,omitempty"`
	Reports     map[string]ReportDTO `json:"reports"`
}

type AssayDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func newAssayDTO(a measurement.Assay) AssayDTO {
	return AssayDTO{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func detailsMap(d comparison.TestDetails) map[string]any {
	moments := func(g comparison.GroupMoments) map[string]any {
		return map[string]any{"group": g.Group, "n": g.N, "mean": num(g.Mean), "std": num(g.Std)}
	}
	ranks := func(g comparison.GroupRanks) map[string]any {
		return map[string]any{"group": g.Group, "n": g.N, "median": num(g.Median)}
	}
	switch d := d.(type) {
	case comparison.TTestDetails:
		return map[string]any{
			"equal_variance":     d.EqualVariance,
			"degrees_of_freedom": num(d.DegreesOfFreedom),
			"mean_difference":    num(d.MeanDifference),
			"cohens_d":           num(d.CohensD),
			"groups":             []map[string]any{moments(d.Group1), moments(d.Group2)},
		}
	case comparison.MannWhitneyDetails:
		return map[string]any{
			"method": string(d.Method),
			"groups": []map[string]any{ranks(d.Group1), ranks(d.Group2)},
		}
	case comparison.ANOVADetails:
		groups := make([]map[string]any, len(d.Groups))
		for i, g := range d.Groups {
			groups[i] = moments(g)
		}
		return map[string]any{
			"df_between":  d.DFBetween,
			"df_within":   d.DFWithin,
			"ss_between":  num(d.SSBetween),
			"ss_within":   num(d.SSWithin),
			"eta_squared": num(d.EtaSquared),
			"groups":      groups,
		}
	case comparison.KruskalWallisDetails:
		groups := make([]map[string]any, len(d.Groups))
		for i, g := range d.Groups {
			groups[i] = ranks(g)
		}
		return map[string]any{"df": d.DF, "groups": groups}
	case comparison.FriedmanDetails:
		return map[string]any{"df": d.DF, "subjects": d.Subjects, "groups": d.Groups}
	}
	return nil
}

// NewReportDTO converts a report to its JSON form
func NewReportDTO(id string, r *comparison.ComparisonReport) ReportDTO {
	dto := ReportDTO{
		ID:           id,
		Fingerprint:  r.Fingerprint().String(),
		ValueColumn:  r.ValueColumn,
		GroupColumn:  r.GroupColumn,
		Alpha:        r.Alpha,
		Groups:       r.GroupNames,
		IsParametric: r.IsParametric,
		Forced:       r.ForcedParametric,
		PostHoc:      []PostHocDTO{},
	}
	for _, d := range r.Descriptives {
		dto.Descriptives = append(dto.Descriptives, DescriptivesDTO{
			Group: d.Group, N: d.N,
			Mean: num(d.Mean), Std: num(d.Std), SEM: num(d.SEM()), Median: num(d.Median),
			Min: num(d.Min), Max: num(d.Max), Q25: num(d.Q25), Q75: num(d.Q75),
		})
	}
	for _, v := range r.NormalityVerdicts {
		dto.Normality = append(dto.Normality, NormalityDTO{
			Group: v.Group, Method: string(v.Method), TestName: v.TestName,
			Statistic: num(v.Statistic), PValue: num(v.PValue), IsNormal: v.IsNormal,
		})
	}

	m := r.MainTest
	dto.MainTest = MainTestDTO{
		Kind:        string(m.Kind),
		TestName:    m.TestName,
		Statistic:   num(m.Statistic),
		PValue:      num(m.PValue),
		Alpha:       m.Alpha,
		Significant: m.Significant,
		Stars:       comparison.Stars(m.PValue),
		Details:     detailsMap(m.Details),
	}
	if es, ok := m.EffectSize(); ok {
		dto.MainTest.EffectSizeName = m.EffectSizeName()
		dto.MainTest.EffectSize = num(es)
	}

	for _, p := range r.PostHoc {
		ph := PostHocDTO{
			Group1: p.Group1, Group2: p.Group2, Method: p.Method,
			MeanDifference: num(p.MeanDifference), Statistic: num(p.Statistic),
			PValue: num(p.PValue), Significant: p.Significant, Stars: comparison.Stars(p.PValue),
		}
		if p.ConfidenceInterval != nil {
			ph.CI = []*float64{num(p.ConfidenceInterval.Lower), num(p.ConfidenceInterval.Upper)}
		}
		dto.PostHoc = append(dto.PostHoc, ph)
	}
	if !r.PostHocAttempted() {
		dto.PostHoc = nil
	}

	for _, t := range r.Trace {
		dto.Trace = append(dto.Trace, TraceDTO{Stage: t.Stage, Detail: t.Detail})
	}
	return dto
}

// NewBatchDTO converts a batch to its JSON form. Report ids are id/parameter.
func NewBatchDTO(id string, assayID int64, b *comparison.BatchReport) BatchDTO {
	dto := BatchDTO{
		ID:          id,
		AssayID:     assayID,
		GroupColumn: b.GroupColumn,
		Parameters:  b.Parameters,
		Significant: b.Significant(),
		Skipped:     b.Skipped,
		Reports:     make(map[string]ReportDTO, len(b.Reports)),
	}
	for _, f := range b.Failures {
		dto.Failures = append(dto.Failures, FailureDTO{Parameter: f.Parameter, Error: f.Err.Error()})
	}
	for p, r := range b.Reports {
		dto.Reports[p] = NewReportDTO(id+"/"+p, r)
	}
	return dto
}

type RepresentativeDTO struct {
	AssayID    int64                               `json:"assay_id"`
	Parameters []string                            `json:"parameters"`
	Normalized bool                                `json:"normalized"`
	Conditions []string                            `json:"conditions"`
	Files      map[string][]app.RepresentativeFile `json:"files"`
}

// NewRepresentativeDTO keeps the top ranked files of each condition
func NewRepresentativeDTO(assayID int64, r *app.RepresentativeResult, top int) RepresentativeDTO {
	dto := RepresentativeDTO{
		AssayID:    assayID,
		Parameters: r.Parameters,
		Normalized: r.Normalized,
		Conditions: r.Conditions,
		Files:      make(map[string][]app.RepresentativeFile, len(r.Conditions)),
	}
	for _, c := range r.Conditions {
		dto.Files[c] = r.Top(c, top)
	}
	return dto
}

type ConditionDensityDTO struct {
	Condition string   `json:"condition"`
	Images    int      `json:"images"`
	Count     int      `json:"count"`
	Density   *float64 `json:"density"`
	PerMM2    *float64 `json:"density_per_mm2"`
	Mean      *float64 `json:"mean_image_density"`
	SD        *float64 `json:"sd_image_density"`
}

type DensityDTO struct {
	AssayID    int64                 `json:"assay_id"`
	Area       float64               `json:"area_um2"`
	Conditions []ConditionDensityDTO `json:"conditions"`
	Images     []app.ImageDensity    `json:"images"`
}

func NewDensityDTO(assayID int64, r *app.DensityResult) DensityDTO {
	dto := DensityDTO{AssayID: assayID, Area: r.Area, Images: r.Images}
	for _, c := range r.Conditions {
		dto.Conditions = append(dto.Conditions, ConditionDensityDTO{
			Condition: c.Condition,
			Images:    c.Images,
			Count:     c.Count,
			Density:   num(c.Density),
			PerMM2:    num(c.PerMM2),
			Mean:      num(c.Mean),
			SD:        num(c.SD),
		})
	}
	return dto
}
