package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hstin/sdf2bsdf/internal/colormap"
	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/internal/convert"
	"hstin/sdf2bsdf/parser"
)

// WorkItem is one SDF input paired with its BSDF output. The handles are
// opened by Plan and owned by whichever worker converts the item.
type WorkItem struct {
	Name        string
	Input       string
	Output      string
	PreviewPath string

	src     io.ReadCloser
	dst     *os.File
	preview *os.File
}

// Result is the outcome of converting one WorkItem.
type Result struct {
	Item    *WorkItem
	Stats   parser.Stats
	Bounds  *parser.Bounds
	Preview []byte
	Err     error
}

// createNew creates path for writing and fails if it already exists.
func createNew(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
}

func openItem(input, outputDir string, withPreview bool) (*WorkItem, error) {
	stem, err := parser.Stem(input)
	if err != nil {
		return nil, err
	}

	item := &WorkItem{
		Name:   stem,
		Input:  input,
		Output: filepath.Join(outputDir, stem+config.Extension),
	}

	item.src, err = parser.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	item.dst, err = createNew(item.Output)
	if err != nil {
		item.src.Close()
		return nil, fmt.Errorf("failed to create output: %w", err)
	}

	if withPreview {
		item.PreviewPath = filepath.Join(outputDir, stem+config.PreviewExt)
		item.preview, err = createNew(item.PreviewPath)
		if err != nil {
			item.PreviewPath = ""
			item.Close()
			item.discard()
			return nil, fmt.Errorf("failed to create preview: %w", err)
		}
	}

	return item, nil
}

// Plan opens every input and creates every output before any conversion
// starts. If one of them fails, everything opened so far is closed, the
// outputs created so far are removed and the error is returned.
func Plan(inputs []string, outputDir string, withPreview bool) ([]*WorkItem, error) {
	items := make([]*WorkItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := openItem(input, outputDir, withPreview)
		if err != nil {
			for _, opened := range items {
				opened.Close()
				opened.discard()
			}
			return nil, fmt.Errorf("%s: %w", input, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Close releases the item's handles and returns the first error.
func (w *WorkItem) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if w.src != nil {
		keep(w.src.Close())
	}
	if w.dst != nil {
		keep(w.dst.Close())
	}
	if w.preview != nil {
		keep(w.preview.Close())
	}
	w.src, w.dst, w.preview = nil, nil, nil
	return first
}

// discard removes the files this item created.
func (w *WorkItem) discard() {
	os.Remove(w.Output)
	if w.PreviewPath != "" {
		os.Remove(w.PreviewPath)
	}
}

func (w *WorkItem) process(cmap *colormap.Map, quality int) (res Result) {
	res.Item = w

	defer func() {
		if err := w.Close(); err != nil && res.Err == nil {
			res.Err = fmt.Errorf("failed to close files: %w", err)
		}
		if res.Err != nil {
			w.discard()
			res.Preview = nil
			res.Err = fmt.Errorf("%s: %w", w.Input, res.Err)
		}
	}()

	grid, err := convert.Convert(w.src, w.dst)
	if err != nil {
		res.Err = err
		return res
	}
	res.Stats = grid.Stats
	if b, ok := grid.Bounds(); ok {
		res.Bounds = &b
	}

	if w.preview != nil {
		data, err := RenderPreview(grid, cmap, quality)
		if err != nil {
			res.Err = fmt.Errorf("failed to render preview: %w", err)
			return res
		}
		if _, err := w.preview.Write(data); err != nil {
			res.Err = fmt.Errorf("failed to write preview: %w", err)
			return res
		}
		res.Preview = data
	}

	return res
}
