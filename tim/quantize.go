package tim

// Quantize converts a truecolor image into an indexed image with at most
// capacity colors. Colors are never approximated; if the image contains
// more unique colors than capacity a *PaletteOverflowError is returned.
// Palette entries are assigned in order of first appearance. Indexed images
// are returned unchanged.
func Quantize(m *Image, capacity int) (*Image, error) {
	if capacity != colorsPerPalette4bpp && capacity != colorsPerPalette8bpp {
		return nil, ErrInvalidCapacity
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Mode == Indexed {
		return m, nil
	}

	n := m.Mode.Channels()

	// Key is the color packed as 0xAARRGGBB
	indices := make(map[uint32]byte)
	dst := &Image{
		Width:  m.Width,
		Height: m.Height,
		Mode:   Indexed,
		Pix:    make([]byte, m.Width*m.Height),
		Palette: Palette{
			Mode: m.Mode,
		},
	}

	for i := range dst.Pix {
		c := m.Pix[i*n : i*n+n]
		key := uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
		if n == 4 {
			key |= uint32(c[3]) << 24
		}

		idx, ok := indices[key]
		if !ok {
			if len(indices) == capacity {
				return nil, &PaletteOverflowError{
					Colors:   countColors(m),
					Capacity: capacity,
				}
			}
			idx = byte(len(indices))
			indices[key] = idx
			dst.Palette.Colors = append(dst.Palette.Colors, c...)
		}
		dst.Pix[i] = idx
	}

	return dst, nil
}

func countColors(m *Image) int {
	n := m.Mode.Channels()
	colors := make(map[string]struct{})
	for i := 0; i < len(m.Pix); i += n {
		colors[string(m.Pix[i:i+n])] = struct{}{}
	}
	return len(colors)
}
