// Package convert turns one SDF stream into one BSDF stream.
package convert

import (
	"io"

	"hstin/sdf2bsdf/internal/bsdf"
	"hstin/sdf2bsdf/parser"
)

// Convert parses src completely before writing anything to dst, so a
// malformed input leaves dst untouched. dst is flushed on success.
func Convert(src io.Reader, dst io.Writer) (*parser.Grid, error) {
	grid, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	if err := bsdf.Write(dst, grid); err != nil {
		return nil, err
	}
	return grid, nil
}
