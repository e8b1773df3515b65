package app

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
	"neuromorph/ports"
)

// DefaultImageArea is the area of one 3.5021 µm square image in µm²
const DefaultImageArea = 3.5021 * 3.5021

// MorphologyService derives per-image summaries from stored assays
type MorphologyService struct {
	repo ports.MeasurementRepository
	log  *internal.Logger
}

// RepresentativeFile is one file ranked by its distance from the
// condition average. Rank 1 is the most representative.
type RepresentativeFile struct {
	Condition    string  `json:"condition"`
	File         string  `json:"file"`
	Distance     float64 `json:"distance_from_average"`
	Measurements int     `json:"n_measurements"`
	Rank         int     `json:"rank"`
}

// RepresentativeResult holds the rankings of every condition
type RepresentativeResult struct {
	Parameters []string
	Normalized bool
	Conditions []string // sorted
	Files      map[string][]RepresentativeFile
}

// Top returns at most n ranked files of a condition
func (r *RepresentativeResult) Top(condition string, n int) []RepresentativeFile {
	files := r.Files[condition]
	if n > 0 && n < len(files) {
		return files[:n]
	}
	return files
}

// ImageDensity is the structure density of one image
type ImageDensity struct {
	Condition string  `json:"condition"`
	File      string  `json:"file"`
	Count     int     `json:"count"`
	Area      float64 `json:"area_um2"`
	Density   float64 `json:"density"`
	PerMM2    float64 `json:"density_per_mm2"`
	Per100UM2 float64 `json:"density_per_100um2"`
}

// ConditionDensity pools the images of one condition. Density is the total
// count over the total imaged area; Mean and SD summarise the per-image
// densities, SD is NaN for a single image.
type ConditionDensity struct {
	Condition string
	Images    int
	Count     int
	Density   float64
	PerMM2    float64
	Mean      float64
	SD        float64
}

// DensityResult holds per-image and per-condition densities
type DensityResult struct {
	Area       float64
	Images     []ImageDensity
	Conditions []ConditionDensity
}

// NewMorphologyService creates a morphology service
func NewMorphologyService(repo ports.MeasurementRepository) *MorphologyService {
	return &MorphologyService{
		repo: repo,
		log:  internal.DefaultLogger.WithComponent("MorphologyService"),
	}
}

// RepresentativeFiles ranks each condition's files by the Euclidean distance
// of their per-parameter means from the condition average. Empty parameters
// means every stored parameter.
func (s *MorphologyService) RepresentativeFiles(ctx context.Context, assayID int64, parameters []string, normalize bool) (*RepresentativeResult, error) {
	if _, err := s.repo.GetAssay(ctx, assayID); err != nil {
		return nil, err
	}
	stored, err := s.repo.Parameters(ctx, assayID)
	if err != nil {
		return nil, err
	}
	used, _ := splitParameters(parameters, stored)
	if len(used) == 0 {
		return nil, core.NewValidationError("parameters", "none of the requested parameters is stored for the assay")
	}
	rows, err := s.repo.Measurements(ctx, assayID, measurement.Filter{Parameters: used})
	if err != nil {
		return nil, err
	}
	res := RankRepresentative(rows, used, normalize)
	s.log.Info("ranked files of %d conditions on %d parameters for assay %d", len(res.Conditions), len(used), assayID)
	return res, nil
}

// Density counts structures per image and converts the counts to densities
// over an image of areaUM2 µm²
func (s *MorphologyService) Density(ctx context.Context, assayID int64, areaUM2 float64) (*DensityResult, error) {
	if areaUM2 <= 0 || math.IsNaN(areaUM2) || math.IsInf(areaUM2, 0) {
		return nil, core.NewValidationError("area", "must be a positive number of µm²")
	}
	if _, err := s.repo.GetAssay(ctx, assayID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Measurements(ctx, assayID, measurement.Filter{})
	if err != nil {
		return nil, err
	}
	res := ComputeDensity(rows, areaUM2)
	s.log.Info("density of %d images over %.4f µm² for assay %d", len(res.Images), areaUM2, assayID)
	return res, nil
}

type fileKey struct {
	condition string
	file      string
}

type fileRow struct {
	fileKey
	row int
}

// RankRepresentative ranks files on the given parameters. A file missing a
// parameter takes the condition average for it. With normalize the
// vectors are z-scored against the condition mean and sample standard
// deviation; a deviation that is zero or undefined counts as 1.
func RankRepresentative(rows []measurement.Measurement, parameters []string, normalize bool) *RepresentativeResult {
	index := make(map[string]int, len(parameters))
	for i, p := range parameters {
		index[p] = i
	}

	condValues := map[string][][]float64{}
	fileValues := map[fileKey][][]float64{}
	fileRows := map[fileKey]map[int]bool{}
	for _, m := range rows {
		j, ok := index[m.Parameter]
		if !ok {
			continue
		}
		k := fileKey{m.Condition, m.SourceFile}
		if condValues[m.Condition] == nil {
			condValues[m.Condition] = make([][]float64, len(parameters))
		}
		if fileValues[k] == nil {
			fileValues[k] = make([][]float64, len(parameters))
			fileRows[k] = map[int]bool{}
		}
		condValues[m.Condition][j] = append(condValues[m.Condition][j], m.Value)
		fileValues[k][j] = append(fileValues[k][j], m.Value)
		fileRows[k][m.Row] = true
	}

	res := &RepresentativeResult{
		Parameters: parameters,
		Normalized: normalize,
		Files:      map[string][]RepresentativeFile{},
	}
	for c := range condValues {
		res.Conditions = append(res.Conditions, c)
	}
	sort.Strings(res.Conditions)

	for _, c := range res.Conditions {
		avg := make([]float64, len(parameters))
		sd := make([]float64, len(parameters))
		for j, x := range condValues[c] {
			avg[j], sd[j] = 0, 1
			if len(x) == 0 {
				continue
			}
			mean, std := stat.MeanStdDev(x, nil)
			avg[j] = mean
			if std > 0 && !math.IsNaN(std) {
				sd[j] = std
			}
		}
		ref := avg
		if normalize {
			ref = make([]float64, len(parameters))
		}

		var ranked []RepresentativeFile
		for k, values := range fileValues {
			if k.condition != c {
				continue
			}
			v := make([]float64, len(parameters))
			for j, x := range values {
				v[j] = avg[j]
				if len(x) > 0 {
					v[j] = stat.Mean(x, nil)
				}
				if normalize {
					v[j] = (v[j] - avg[j]) / sd[j]
				}
			}
			ranked = append(ranked, RepresentativeFile{
				Condition:    c,
				File:         k.file,
				Distance:     floats.Distance(v, ref, 2),
				Measurements: len(fileRows[k]),
			})
		}
		sort.Slice(ranked, func(a, b int) bool {
			if ranked[a].Distance != ranked[b].Distance {
				return ranked[a].Distance < ranked[b].Distance
			}
			return ranked[a].File < ranked[b].File
		})
		for i := range ranked {
			ranked[i].Rank = i + 1
		}
		res.Files[c] = ranked
	}
	return res
}

// ComputeDensity counts the distinct rows of each (condition, file) image.
// Images are ordered by condition then file.
func ComputeDensity(rows []measurement.Measurement, areaUM2 float64) *DensityResult {
	seen := map[fileRow]bool{}
	counts := map[fileKey]int{}
	for _, m := range rows {
		r := fileRow{fileKey{m.Condition, m.SourceFile}, m.Row}
		if seen[r] {
			continue
		}
		seen[r] = true
		counts[r.fileKey]++
	}

	keys := make([]fileKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].condition != keys[b].condition {
			return keys[a].condition < keys[b].condition
		}
		return keys[a].file < keys[b].file
	})

	res := &DensityResult{Area: areaUM2}
	perCondition := map[string][]float64{}
	totals := map[string]int{}
	var conditions []string
	for _, k := range keys {
		d := density(counts[k], areaUM2)
		res.Images = append(res.Images, ImageDensity{
			Condition: k.condition,
			File:      k.file,
			Count:     counts[k],
			Area:      areaUM2,
			Density:   d,
			PerMM2:    d * 1e6,
			Per100UM2: d * 100,
		})
		if _, ok := perCondition[k.condition]; !ok {
			conditions = append(conditions, k.condition)
		}
		perCondition[k.condition] = append(perCondition[k.condition], d)
		totals[k.condition] += counts[k]
	}

	for _, c := range conditions {
		images := perCondition[c]
		d := density(totals[c], areaUM2*float64(len(images)))
		cd := ConditionDensity{
			Condition: c,
			Images:    len(images),
			Count:     totals[c],
			Density:   d,
			PerMM2:    d * 1e6,
			Mean:      stat.Mean(images, nil),
			SD:        math.NaN(),
		}
		if len(images) > 1 {
			cd.SD = stat.StdDev(images, nil)
		}
		res.Conditions = append(res.Conditions, cd)
	}
	return res
}

func density(count int, area float64) float64 {
	if area <= 0 {
		return 0
	}
	return float64(count) / area
}

// splitParameters keeps the requested parameters that are stored, in
// request order. No request means every stored parameter.
func splitParameters(requested, stored []string) (used, missing []string) {
	if len(requested) == 0 {
		return stored, nil
	}
	have := make(map[string]bool, len(stored))
	for _, p := range stored {
		have[p] = true
	}
	for _, p := range requested {
		if have[p] {
			used = append(used, p)
		} else {
			missing = append(missing, p)
		}
	}
	return used, missing
}
