// Package engine is the automatic statistical comparison engine: it
// classifies group normality, selects a hypothesis test, executes it and
// runs post-hoc comparisons when an omnibus test is significant.
package engine

import (
	"fmt"

	"neuromorph/adapters/stats/distributions"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// RangeDistribution supplies the studentized range distribution for Tukey HSD
type RangeDistribution interface {
	CDF(q float64, k int, df float64) float64
	Quantile(p float64, k int, df float64) float64
}

// Config is the static engine configuration
type Config struct {
	Alpha           float64
	NormalityMethod comparison.NormalityMethod
	EqualVariance   bool
}

// DefaultConfig returns alpha 0.05, Shapiro-Wilk and pooled variance
func DefaultConfig() Config {
	return Config{
		Alpha:           0.05,
		NormalityMethod: comparison.NormalityShapiro,
		EqualVariance:   true,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("%w: alpha must be in (0, 1), got %v", core.ErrInvalidConfig, c.Alpha)
	}
	if !c.NormalityMethod.Valid() {
		return fmt.Errorf("%w: %v", core.ErrInvalidConfig, core.NewUnsupportedTestError(string(c.NormalityMethod)))
	}
	return nil
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig replaces the whole configuration
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithAlpha sets the significance level
func WithAlpha(alpha float64) Option {
	return func(e *Engine) { e.cfg.Alpha = alpha }
}

// WithNormalityMethod sets the default normality test
func WithNormalityMethod(m comparison.NormalityMethod) Option {
	return func(e *Engine) { e.cfg.NormalityMethod = m }
}

// WithEqualVariance selects the pooled (true) or Welch (false) t-test
func WithEqualVariance(equal bool) Option {
	return func(e *Engine) { e.cfg.EqualVariance = equal }
}

// WithRangeDistribution overrides the studentized range provider.
// A nil provider disables Tukey HSD.
func WithRangeDistribution(rd RangeDistribution) Option {
	return func(e *Engine) { e.rangeDist = rd }
}

// Engine runs comparisons. It is immutable after construction and safe for
// concurrent use.
type Engine struct {
	cfg       Config
	rangeDist RangeDistribution
}

// NewEngine creates an engine with the default configuration modified by opts
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:       DefaultConfig(),
		rangeDist: distributions.StudentizedRange{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Alpha returns the significance level
func (e *Engine) Alpha() float64 {
	return e.cfg.Alpha
}
