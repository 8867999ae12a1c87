package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"hstin/sdf2bsdf/internal/config"
)

// Stats holds the running minimum and maximum over the samples of one grid.
// Before any sample is seen Min is math.MaxInt16 and Max is math.MinInt16.
type Stats struct {
	Min   int16
	Max   int16
	Count int
}

// NewStats returns Stats with the inverted sentinel pair, ready for Add.
func NewStats() Stats {
	return Stats{Min: math.MaxInt16, Max: math.MinInt16}
}

// Add folds one sample into the running statistics.
func (s *Stats) Add(v int16) {
	if v > s.Max {
		s.Max = v
	}
	if v < s.Min {
		s.Min = v
	}
	s.Count++
}

// Bounds is the tile extent announced by an SDF header, in degrees.
// Longitudes are degrees west, as SDF files store them.
type Bounds struct {
	MaxWest  float64
	MinNorth float64
	MinWest  float64
	MaxNorth float64
}

// Center returns the middle of the tile as (north, west).
func (b Bounds) Center() (float64, float64) {
	return (b.MinNorth + b.MaxNorth) / 2, (b.MinWest + b.MaxWest) / 2
}

// Grid is one 1200x1200 elevation tile. Samples is indexed y*GridSize+x,
// where x advances once every GridSize data lines.
type Grid struct {
	Header  [config.HeaderLines]string
	Samples []int16
	Stats   Stats
}

// NewGrid allocates a zero-filled grid with sentinel statistics.
func NewGrid() *Grid {
	return &Grid{
		Samples: make([]int16, config.GridCells),
		Stats:   NewStats(),
	}
}

// GetData returns the sample at column x, row y, or 0 outside the grid.
func (g *Grid) GetData(x, y int) int16 {
	if x < 0 || x >= config.GridSize || y < 0 || y >= config.GridSize {
		return 0
	}
	return g.Samples[y*config.GridSize+x]
}

// Bounds interprets the header lines as tile bounds. The header carries no
// contract, so anything unparseable just yields ok == false.
func (g *Grid) Bounds() (Bounds, bool) {
	var vals [config.HeaderLines]float64
	for i, line := range g.Header {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return Bounds{}, false
		}
		vals[i] = v
	}
	return Bounds{MaxWest: vals[0], MinNorth: vals[1], MinWest: vals[2], MaxNorth: vals[3]}, true
}

// Parse reads an SDF stream: HeaderLines lines that are kept but not
// checked, then one base-10 int16 per line. Parsing stops at the first bad
// line.
func Parse(r io.Reader) (*Grid, error) {
	grid := NewGrid()
	scanner := bufio.NewScanner(r)
	// Header lines carry no contract, including on their length.
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)

	lineNo := 0
	x, y := 0, 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if lineNo <= config.HeaderLines {
			grid.Header[lineNo-1] = line
			continue
		}

		if grid.Stats.Count == config.GridCells {
			return nil, &DimensionError{Line: lineNo, Limit: config.GridCells}
		}

		v, err := strconv.ParseInt(line, 10, 16)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		elev := int16(v)

		grid.Stats.Add(elev)
		grid.Samples[y*config.GridSize+x] = elev

		y++
		if y == config.GridSize {
			y = 0
			x++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read SDF data: %w", err)
	}

	if grid.Stats.Count == 0 {
		return nil, ErrEmptyGrid
	}

	return grid, nil
}
