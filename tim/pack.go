package tim

import "encoding/binary"

// packed holds pixel or palette data ready to be written as a section.
type packed struct {
	data   []byte
	stride int // bytes per row
	rows   int
}

func (p *packed) widthUnits() int {
	return p.stride >> 1
}

func convertPixels(m *Image, forceSTP bool) []Color16 {
	n := m.Mode.Channels()
	hasAlpha := m.Mode == RGBA

	colors := make([]Color16, m.Width*m.Height)
	for i := range colors {
		c := m.Pix[i*n : i*n+n]
		var a uint8
		if hasAlpha {
			a = c[3]
		}
		colors[i] = ToColor16(c[0], c[1], c[2], a, hasAlpha, forceSTP)
	}
	return colors
}

func packColors(colors []Color16, width, height int) *packed {
	p := &packed{
		data:   make([]byte, len(colors)*2),
		stride: width * 2,
		rows:   height,
	}
	for i, c := range colors {
		binary.LittleEndian.PutUint16(p.data[i*2:], uint16(c))
	}
	return p
}

// packPalette converts every palette entry and pads the result with zeroes
// up to 16 or 256 entries.
func packPalette(pal Palette, forceSTP bool) *packed {
	n := pal.Mode.Channels()
	hasAlpha := pal.Mode == RGBA

	size := colorsPerPalette4bpp
	if pal.Len() > colorsPerPalette4bpp {
		size = colorsPerPalette8bpp
	}

	colors := make([]Color16, size)
	for i := 0; i < pal.Len(); i++ {
		c := pal.Colors[i*n : i*n+n]
		var a uint8
		if hasAlpha {
			a = c[3]
		}
		colors[i] = ToColor16(c[0], c[1], c[2], a, hasAlpha, forceSTP)
	}

	return packColors(colors, size, 1)
}

// packIndices packs one index per byte when wide is true, otherwise two
// indices per byte with the first pixel in the low nibble. Rows are padded
// to an even number of bytes both before and after nibble packing.
func packIndices(pix []byte, width, height int, wide bool) *packed {
	stride := width + width&1
	if !wide {
		stride >>= 1
		stride += stride & 1
	}

	p := &packed{
		data:   make([]byte, stride*height),
		stride: stride,
		rows:   height,
	}

	for y := 0; y < height; y++ {
		row := pix[y*width : y*width+width]
		out := p.data[y*stride : y*stride+stride]
		for x, idx := range row {
			if wide {
				out[x] = idx
			} else {
				out[x>>1] |= (idx & 0x0f) << (uint(x&1) << 2)
			}
		}
	}

	return p
}
