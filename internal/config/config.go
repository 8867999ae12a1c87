package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Inputs     []string
	OutputDir  string
	Catalog    string
	Preview    bool
	ColorMap   string
	NumWorkers int
	Quality    int
	Verbose    bool
}

const (
	GridSize    = 1200
	GridCells   = GridSize * GridSize
	HeaderLines = 4
	Extension   = ".bsdf"
	PreviewExt  = ".webp"

	// Sample block plus the min/max trailer, 2 bytes each.
	OutputSize = (GridCells + 2) * 2

	DefaultQuality = 90

	// Preview images are downsampled by PreviewStep in both directions.
	PreviewStep = 2
	PreviewSize = GridSize / PreviewStep

	// Approximate ground distance between samples, in meters, used for
	// hillshading previews.
	CellSize = 90.0
)

// File mirrors the optional TOML config file. Pointer fields distinguish
// "unset" from zero values so flags can be layered on top.
type File struct {
	Out     string `toml:"out"`
	Catalog string `toml:"catalog"`
	Verbose *bool  `toml:"verbose"`
	Preview struct {
		Enabled *bool  `toml:"enabled"`
		Colors  string `toml:"colors"`
		Quality *int   `toml:"quality"`
	} `toml:"preview"`
}

// LoadFile reads a TOML config file.
func LoadFile(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in config file %s", undecoded[0].String(), path)
	}
	return &f, nil
}

// Apply copies the values set in f onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Out != "" {
		cfg.OutputDir = f.Out
	}
	if f.Catalog != "" {
		cfg.Catalog = f.Catalog
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	if f.Preview.Enabled != nil {
		cfg.Preview = *f.Preview.Enabled
	}
	if f.Preview.Colors != "" {
		cfg.ColorMap = f.Preview.Colors
	}
	if f.Preview.Quality != nil {
		cfg.Quality = *f.Preview.Quality
	}
}

// Validate checks the values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("no input files")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid quality %d: must be between 1 and 100", c.Quality)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("invalid worker count %d", c.NumWorkers)
	}
	return nil
}
