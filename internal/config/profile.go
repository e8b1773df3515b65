package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"neuromorph/adapters/stats/engine"
	"neuromorph/domain/comparison"
	"neuromorph/internal/errors"
)

// Profile is a saved analysis setup: which parameters and conditions to
// compare, how to test them and what to export.
type Profile struct {
	Name       string             `yaml:"name" validate:"required"`
	Statistics StatisticsSettings `yaml:"statistics"`
	Parameters []string           `yaml:"parameters,omitempty" validate:"dive,required"`
	Conditions []string           `yaml:"conditions,omitempty" validate:"dive,required"`
	Export     ExportSettings     `yaml:"export"`
}

// StatisticsSettings mirrors engine.Config plus the normality toggle.
// With NormalityTest off, Parametric forces the test family.
type StatisticsSettings struct {
	Alpha           float64 `yaml:"alpha" validate:"gt=0,lt=1"`
	NormalityTest   bool    `yaml:"normality_test"`
	NormalityMethod string  `yaml:"normality_method" validate:"oneof=shapiro kstest"`
	Parametric      bool    `yaml:"parametric"`
	EqualVariance   bool    `yaml:"equal_variance"`
}

// ExportSettings selects statistics-table sheets
type ExportSettings struct {
	Summary  bool `yaml:"summary"`
	Anova    bool `yaml:"anova"`
	Pairwise bool `yaml:"pairwise"`
}

var profileValidate = validator.New()

// DefaultProfile returns the profile used when no file is given
func DefaultProfile() Profile {
	return Profile{
		Name: "default",
		Statistics: StatisticsSettings{
			Alpha:           0.05,
			NormalityTest:   true,
			NormalityMethod: string(comparison.NormalityShapiro),
			Parametric:      true,
			EqualVariance:   true,
		},
		Export: ExportSettings{Summary: true, Anova: true, Pairwise: true},
	}
}

// ParseProfile decodes YAML over the defaults and validates the result
func ParseProfile(data []byte) (*Profile, error) {
	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse profile: %w", err))
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// LoadProfile reads a YAML profile from disk
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to read profile %s: %w", path, err))
	}
	return ParseProfile(data)
}

// Save writes the profile as YAML
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks struct tags
func (p *Profile) Validate() error {
	if err := profileValidate.Struct(p); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("invalid profile %q: %w", p.Name, err))
	}
	return nil
}

// EngineConfig builds the engine configuration for this profile
func (p *Profile) EngineConfig() engine.Config {
	return engine.Config{
		Alpha:           p.Statistics.Alpha,
		NormalityMethod: comparison.NormalityMethod(p.Statistics.NormalityMethod),
		EqualVariance:   p.Statistics.EqualVariance,
	}
}

// ForcedParametric is nil when normality testing decides the family
func (p *Profile) ForcedParametric() *bool {
	if p.Statistics.NormalityTest {
		return nil
	}
	forced := p.Statistics.Parametric
	return &forced
}
