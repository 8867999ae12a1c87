package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdf2bsdf.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestOutputSize(t *testing.T) {
	assert.Equal(t, 2880004, OutputSize)
	assert.Equal(t, 1440000, GridCells)
}

func TestLoadFile_Apply(t *testing.T) {
	path := writeConfig(t, `
out = "/data/bsdf"
catalog = "/data/catalog.db"
verbose = true

[preview]
enabled = true
colors = "ramp.txt"
quality = 75
`)

	f, err := LoadFile(path)
	require.NoError(t, err)

	cfg := Config{Quality: DefaultQuality, NumWorkers: 1}
	f.Apply(&cfg)

	assert.Equal(t, "/data/bsdf", cfg.OutputDir)
	assert.Equal(t, "/data/catalog.db", cfg.Catalog)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Preview)
	assert.Equal(t, "ramp.txt", cfg.ColorMap)
	assert.Equal(t, 75, cfg.Quality)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `catalog = "grids.db"`)

	f, err := LoadFile(path)
	require.NoError(t, err)

	cfg := Config{OutputDir: "out", Quality: DefaultQuality}
	f.Apply(&cfg)

	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "grids.db", cfg.Catalog)
	assert.Equal(t, DefaultQuality, cfg.Quality)
	assert.False(t, cfg.Preview)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, `out = `))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, `workers = 4`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestValidate(t *testing.T) {
	valid := Config{Inputs: []string{"a.sdf"}, Quality: 90, NumWorkers: 2}
	require.NoError(t, valid.Validate())

	noInputs := valid
	noInputs.Inputs = nil
	assert.Error(t, noInputs.Validate())

	badQuality := valid
	badQuality.Quality = 101
	assert.Error(t, badQuality.Validate())

	noWorkers := valid
	noWorkers.NumWorkers = 0
	assert.Error(t, noWorkers.Validate())
}
