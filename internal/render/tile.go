package render

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"

	"hstin/sdf2bsdf/internal/colormap"
	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/parser"
)

// RenderPreview draws a hillshaded color-relief image of grid, downsampled
// to PreviewSize pixels, and encodes it as WebP. Pixel column px shows grid
// column x = px*PreviewStep.
func RenderPreview(grid *parser.Grid, cmap *colormap.Map, quality int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, config.PreviewSize, config.PreviewSize))

	for py := 0; py < config.PreviewSize; py++ {
		rowOffset := py * img.Stride
		y := py * config.PreviewStep
		for px := 0; px < config.PreviewSize; px++ {
			x := px * config.PreviewStep

			val := grid.GetData(x, y)
			pixelColor := cmap.GetColor(float64(val))

			shade := 1.0
			if val > 0 {
				shade = 0.4 + 0.6*Hillshade(grid, x, y)
			}

			idx := rowOffset + px*4
			img.Pix[idx] = uint8(float64(pixelColor.R) * shade)
			img.Pix[idx+1] = uint8(float64(pixelColor.G) * shade)
			img.Pix[idx+2] = uint8(float64(pixelColor.B) * shade)
			img.Pix[idx+3] = pixelColor.A
		}
	}

	var buf bytes.Buffer
	options := &webp.Options{Lossless: false, Quality: float32(quality)}
	err := webp.Encode(&buf, img, options)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
