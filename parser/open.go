package parser

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var compressionSuffixes = []string{".gz", ".zst", ".bz2"}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens an SDF file for reading. Files ending in .gz, .zst or .bz2 are
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	buffered := bufio.NewReader(file)
	rc := &readCloser{Reader: buffered, closers: []func() error{file.Close}}

	switch compressionSuffix(path) {
	case ".gz":
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		rc.Reader = gz
		rc.closers = append(rc.closers, gz.Close)
	case ".zst":
		dec, err := zstd.NewReader(buffered, zstd.WithDecoderConcurrency(1))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		rc.Reader = dec
		rc.closers = append(rc.closers, func() error {
			dec.Close()
			return nil
		})
	case ".bz2":
		rc.Reader = bzip2.NewReader(buffered)
	}

	return rc, nil
}

func compressionSuffix(path string) string {
	lower := strings.ToLower(path)
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return suffix
		}
	}
	return ""
}

// Stem returns the file name of path without its compression suffix and
// without its extension, e.g. "40:41:74:75" for "dir/40:41:74:75.sdf.gz".
func Stem(path string) (string, error) {
	if path == "" {
		return "", &PathError{Path: path}
	}
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", &PathError{Path: path}
	}

	if suffix := compressionSuffix(name); suffix != "" {
		name = name[:len(name)-len(suffix)]
	}
	if ext := filepath.Ext(name); ext != name {
		name = strings.TrimSuffix(name, ext)
	}

	if name == "" {
		return "", &PathError{Path: path}
	}
	return name, nil
}
