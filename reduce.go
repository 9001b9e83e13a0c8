package psxtim

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// reduce returns a paletted copy of m using at most colors colors. Unlike
// tim.Quantize this is lossy.
func reduce(m image.Image, colors int) *image.Paletted {
	q := quantize.MedianCutQuantizer{}

	p := make(color.Palette, 0, colors)

	// Keep a slot for fully transparent pixels
	if o, ok := m.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		p = append(p, color.NRGBA{})
	}

	b := m.Bounds()
	pm := image.NewPaletted(b, q.Quantize(p, m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return pm
}
