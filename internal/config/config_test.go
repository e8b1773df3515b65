package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromorph/domain/comparison"
	"neuromorph/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_DRIVER", "DATABASE_URL", "PORT", "GIN_MODE", "STATS_ALPHA", "STATS_NORMALITY_TEST", "STATS_EQUAL_VAR", "STATS_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "neuromorph.db", cfg.Database.URL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 0.05, cfg.Stats.Alpha)
	assert.Equal(t, comparison.NormalityShapiro, cfg.Stats.NormalityMethod)
	assert.True(t, cfg.Stats.EqualVariance)
	assert.Equal(t, 4, cfg.Stats.Workers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/neuromorph")
	t.Setenv("STATS_ALPHA", "0.01")
	t.Setenv("STATS_NORMALITY_TEST", "KSTEST")
	t.Setenv("STATS_EQUAL_VAR", "false")
	t.Setenv("STATS_WORKERS", "2")
	t.Setenv("GIN_MODE", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 0.01, cfg.Stats.EngineConfig().Alpha)
	assert.Equal(t, comparison.NormalityKS, cfg.Stats.NormalityMethod)
	assert.False(t, cfg.Stats.EqualVariance)
	assert.Equal(t, 2, cfg.Stats.Workers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{"alpha out of range", map[string]string{"DATABASE_DRIVER": "", "STATS_ALPHA": "1.5"}},
		{"unknown gin mode", map[string]string{"DATABASE_DRIVER": "", "GIN_MODE": "verbose"}},
		{"unknown normality test", map[string]string{"DATABASE_DRIVER": "", "STATS_NORMALITY_TEST": "anderson"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestParseProfile(t *testing.T) {
	data := []byte(`
name: dendrites
statistics:
  alpha: 0.01
  normality_test: false
  parametric: false
parameters: [Area, Perimeter]
conditions: [WT, KO]
export:
  pairwise: false
`)
	profile, err := ParseProfile(data)
	require.NoError(t, err)
	assert.Equal(t, "dendrites", profile.Name)
	assert.Equal(t, 0.01, profile.EngineConfig().Alpha)
	assert.Equal(t, comparison.NormalityShapiro, profile.EngineConfig().NormalityMethod)
	assert.Equal(t, []string{"Area", "Perimeter"}, profile.Parameters)
	require.NotNil(t, profile.ForcedParametric())
	assert.False(t, *profile.ForcedParametric())
	assert.True(t, profile.Export.Summary)
	assert.False(t, profile.Export.Pairwise)
}

func TestDefaultProfileLetsNormalityDecide(t *testing.T) {
	profile := DefaultProfile()
	require.NoError(t, profile.Validate())
	assert.Nil(t, profile.ForcedParametric())
}

func TestParseProfileInvalid(t *testing.T) {
	_, err := ParseProfile([]byte("name: x\nstatistics:\n  alpha: 2\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = ParseProfile([]byte("name: x\nstatistics:\n  normality_method: lilliefors\n"))
	require.Error(t, err)

	_, err = ParseProfile([]byte("name: [unclosed"))
	require.Error(t, err)
}

func TestProfileRoundTripOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	profile := DefaultProfile()
	profile.Name = "saved"
	profile.Parameters = []string{"Length"}
	require.NoError(t, profile.Save(path))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, profile, *loaded)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
