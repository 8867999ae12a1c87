// Package bsdf encodes and decodes the binary elevation format.
//
// A BSDF file is exactly config.OutputSize bytes: config.GridCells
// little-endian int16 samples in grid storage order, followed by the
// minimum and maximum sample, also little-endian int16.
package bsdf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/parser"
)

var (
	// ErrShortFile indicates a stream that ends before the trailer.
	ErrShortFile = errors.New("bsdf: file is shorter than a full grid plus trailer")
	// ErrTrailingData indicates bytes after the trailer.
	ErrTrailingData = errors.New("bsdf: unexpected data after trailer")
)

// Write encodes grid to w and flushes it.
func Write(w io.Writer, grid *parser.Grid) error {
	if len(grid.Samples) != config.GridCells {
		return fmt.Errorf("bsdf: grid has %d samples, want %d", len(grid.Samples), config.GridCells)
	}

	bw := bufio.NewWriterSize(w, 64*1024)
	if err := binary.Write(bw, binary.LittleEndian, grid.Samples); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	trailer := [2]int16{grid.Stats.Min, grid.Stats.Max}
	if err := binary.Write(bw, binary.LittleEndian, trailer); err != nil {
		return fmt.Errorf("failed to write trailer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Read decodes a BSDF stream. Stats.Count is set to GridCells since the
// format does not record how many samples the source held.
func Read(r io.Reader) (*parser.Grid, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	grid := parser.NewGrid()

	if err := binary.Read(br, binary.LittleEndian, grid.Samples); err != nil {
		return nil, readErr(err)
	}
	var trailer [2]int16
	if err := binary.Read(br, binary.LittleEndian, &trailer); err != nil {
		return nil, readErr(err)
	}
	grid.Stats.Min, grid.Stats.Max = trailer[0], trailer[1]
	grid.Stats.Count = config.GridCells

	if _, err := br.ReadByte(); err == nil {
		return nil, ErrTrailingData
	} else if err != io.EOF {
		return nil, fmt.Errorf("failed to read BSDF data: %w", err)
	}
	return grid, nil
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortFile
	}
	return fmt.Errorf("failed to read BSDF data: %w", err)
}
