package tim

import (
	"image"
	"image/color"
)

// ColorMode describes how the pixels of an Image are stored.
type ColorMode int

// Supported color modes.
const (
	RGB ColorMode = iota + 1
	RGBA
	Indexed
)

// Channels returns the number of bytes used per pixel, or zero for an
// unknown mode.
func (m ColorMode) Channels() int {
	switch m {
	case RGB:
		return 3
	case RGBA:
		return 4
	case Indexed:
		return 1
	}
	return 0
}

func (m ColorMode) String() string {
	switch m {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	case Indexed:
		return "indexed"
	}
	return "unknown"
}

// Palette holds the colors of an indexed image, either 3 or 4 bytes per
// entry depending on Mode.
type Palette struct {
	Mode   ColorMode
	Colors []byte
}

// Len returns the number of entries in the palette.
func (p Palette) Len() int {
	if n := p.Mode.Channels(); n > 1 {
		return len(p.Colors) / n
	}
	return 0
}

// Image is a decoded image with pixels stored in row-major order. For
// Indexed images Pix holds one palette index per pixel.
type Image struct {
	Width, Height int
	Mode          ColorMode
	Pix           []byte
	Palette       Palette
}

func (m *Image) validate() error {
	if m == nil {
		return malformed("no image")
	}
	if m.Width < 1 || m.Height < 1 {
		return malformed("invalid dimensions %dx%d", m.Width, m.Height)
	}

	n := m.Mode.Channels()
	if n == 0 {
		return malformed("unknown color mode %d", m.Mode)
	}
	if len(m.Pix) != m.Width*m.Height*n {
		return malformed("%d bytes of pixel data for %dx%d %s image", len(m.Pix), m.Width, m.Height, m.Mode)
	}

	if m.Mode != Indexed {
		return nil
	}

	switch m.Palette.Mode {
	case RGB, RGBA:
	default:
		return malformed("unsupported palette mode %s", m.Palette.Mode)
	}
	if len(m.Palette.Colors)%m.Palette.Mode.Channels() != 0 {
		return malformed("%d bytes of %s palette data", len(m.Palette.Colors), m.Palette.Mode)
	}

	return nil
}

// FromImage converts m into an Image. Paletted images keep their palette,
// opaque images become RGB and everything else becomes RGBA.
func FromImage(m image.Image) *Image {
	b := m.Bounds()
	dst := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	if pm, ok := m.(*image.Paletted); ok {
		dst.Mode = Indexed
		dst.Pix = make([]byte, 0, dst.Width*dst.Height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			dst.Pix = append(dst.Pix, pm.Pix[pm.PixOffset(b.Min.X, y):pm.PixOffset(b.Max.X, y)]...)
		}
		dst.Palette.Mode = RGBA
		dst.Palette.Colors = make([]byte, 0, len(pm.Palette)*4)
		for _, c := range pm.Palette {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			dst.Palette.Colors = append(dst.Palette.Colors, n.R, n.G, n.B, n.A)
		}
		return dst
	}

	dst.Mode = RGBA
	if o, ok := m.(interface{ Opaque() bool }); ok && o.Opaque() {
		dst.Mode = RGB
	}

	dst.Pix = make([]byte, 0, dst.Width*dst.Height*dst.Mode.Channels())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			dst.Pix = append(dst.Pix, n.R, n.G, n.B)
			if dst.Mode == RGBA {
				dst.Pix = append(dst.Pix, n.A)
			}
		}
	}

	return dst
}
