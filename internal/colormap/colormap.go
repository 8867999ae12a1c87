package colormap

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
)

type ColorMapEntry struct {
	ValueThreshold float64
	Color          color.RGBA
}

// Map is an ascending list of elevation thresholds. Values at or below sea
// level get the water color.
type Map struct {
	entries []ColorMapEntry
	water   color.RGBA
}

var waterColor = color.RGBA{13, 26, 43, 255}

// Default is a plain green-brown-white hypsometric ramp in meters.
func Default() *Map {
	return &Map{
		water: waterColor,
		entries: []ColorMapEntry{
			{math.Inf(-1), color.RGBA{38, 115, 0, 255}},
			{200, color.RGBA{112, 168, 0, 255}},
			{500, color.RGBA{230, 230, 0, 255}},
			{1000, color.RGBA{168, 112, 0, 255}},
			{2000, color.RGBA{115, 76, 0, 255}},
			{3000, color.RGBA{178, 178, 178, 255}},
			{4500, color.RGBA{255, 255, 255, 255}},
		},
	}
}

// Load reads a color map file with one "threshold r g b a" entry per line.
// Blank lines and lines starting with # are ignored, "-inf" is accepted as
// threshold.
func Load(filename string) (*Map, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening color map file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(r io.Reader) (*Map, error) {
	m := &Map{water: waterColor}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			slog.Warn("invalid line format in color map file", "line", line)
			continue
		}

		var threshold float64
		if fields[0] == "-inf" {
			threshold = math.Inf(-1)
		} else {
			val, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				slog.Warn("invalid threshold value in color map file", "value", fields[0])
				continue
			}
			threshold = val
		}

		var rgba [4]uint8
		for i := range rgba {
			c, err := strconv.ParseUint(fields[i+1], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid color component %q: %w", fields[i+1], err)
			}
			rgba[i] = uint8(c)
		}

		m.entries = append(m.entries, ColorMapEntry{
			ValueThreshold: threshold,
			Color:          color.RGBA{rgba[0], rgba[1], rgba[2], rgba[3]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading color map: %w", err)
	}

	if len(m.entries) == 0 {
		return nil, fmt.Errorf("no valid entries found in color map file")
	}
	return m, nil
}

func (m *Map) GetColor(value float64) color.RGBA {
	if value <= 0 {
		return m.water
	}

	for i := len(m.entries) - 1; i >= 0; i-- {
		if value >= m.entries[i].ValueThreshold {
			return m.entries[i].Color
		}
	}

	if len(m.entries) > 0 {
		return m.entries[0].Color
	}

	return m.water
}
