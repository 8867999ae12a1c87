package render

import (
	"math"

	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/parser"
)

// Light source for hillshading: from the north-west, 45 degrees up.
const (
	sunAzimuth  = 315.0
	sunAltitude = 45.0
)

// Hillshade returns the illumination of cell (x, y) in [0, 1]. Neighbors
// outside the grid are clamped to the edge.
func Hillshade(grid *parser.Grid, x, y int) float64 {
	at := func(cx, cy int) float64 {
		cx = clamp(cx, 0, config.GridSize-1)
		cy = clamp(cy, 0, config.GridSize-1)
		return float64(grid.GetData(cx, cy))
	}

	dzdx := ((at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
		(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))) / (8 * config.CellSize)
	dzdy := ((at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
		(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))) / (8 * config.CellSize)

	slope := math.Atan(math.Hypot(dzdx, dzdy))
	aspect := math.Atan2(dzdy, -dzdx)

	zenith := (90 - sunAltitude) * math.Pi / 180.0
	azimuth := math.Mod(360-sunAzimuth+90, 360) * math.Pi / 180.0

	shade := math.Cos(zenith)*math.Cos(slope) +
		math.Sin(zenith)*math.Sin(slope)*math.Cos(azimuth-aspect)

	if shade < 0 {
		return 0
	}
	if shade > 1 {
		return 1
	}
	return shade
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
