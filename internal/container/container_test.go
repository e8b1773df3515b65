package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromorph/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, URL: filepath.Join(t.TempDir(), "c.db")},
		Stats: config.StatsConfig{
			Alpha:           0.01,
			NormalityMethod: "kstest",
			EqualVariance:   false,
			Workers:         3,
		},
	}
}

func TestOpenWiresServices(t *testing.T) {
	c, err := Open(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	require.NotNil(t, c.Comparisons)
	require.NotNil(t, c.Imports)
	require.NotNil(t, c.Morphology)
	assert.Equal(t, 0.01, c.Engine.Alpha())
	assert.False(t, c.Engine.Config().EqualVariance)
	assert.Same(t, c.Engine, c.Comparisons.Engine())

	assays, err := c.MeasurementRepo.ListAssays(context.Background())
	require.NoError(t, err)
	assert.Empty(t, assays)
}

func TestNewRejectsBadEngineConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stats.Alpha = 0
	_, err := New(cfg)
	assert.Error(t, err)

	_, err = New(nil)
	assert.Error(t, err)

}
