package tim

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
)

type fileHeader struct {
	Version uint32
	Flags   uint32
}

type sectionHeader struct {
	Size   uint32
	X, Y   uint16
	Width  uint16
	Height uint16
}

type encoder struct {
	b *bytes.Buffer
}

func (e *encoder) writeSection(p *packed, x, y int) error {
	h := sectionHeader{
		Size:   uint32(sectionSize + len(p.data)),
		X:      uint16(x),
		Y:      uint16(y),
		Width:  uint16(p.widthUnits()),
		Height: uint16(p.rows),
	}
	if err := binary.Write(e.b, binary.LittleEndian, &h); err != nil {
		return err
	}
	_, err := e.b.Write(p.data)
	return err
}

// assemble lays out the header, the optional CLUT section and the pixel
// data section. All validation must have happened already.
func assemble(pixels, clut *packed, depth uint32, x, y, clutX, clutY int) ([]byte, error) {
	size := headerSize + sectionSize + len(pixels.data)
	flags := depth
	if clut != nil {
		size += sectionSize + len(clut.data)
		flags |= flagPalette
	}

	e := encoder{b: bytes.NewBuffer(make([]byte, 0, size))}

	if err := binary.Write(e.b, binary.LittleEndian, &fileHeader{version, flags}); err != nil {
		return nil, err
	}

	if clut != nil {
		if err := e.writeSection(clut, clutX, clutY); err != nil {
			return nil, err
		}
	}

	if err := e.writeSection(pixels, x, y); err != nil {
		return nil, err
	}

	return e.b.Bytes(), nil
}

// EncodeRaw encodes a truecolor image as a 16bpp TIM placed at x, y in VRAM.
func EncodeRaw(m *Image, x, y int, forceSTP bool) ([]byte, error) {
	if err := checkPlacement("image", x, y); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Mode == Indexed {
		return nil, malformed("raw encoding requires a truecolor image")
	}

	pixels := packColors(convertPixels(m, forceSTP), m.Width, m.Height)

	return assemble(pixels, nil, depth16bpp, x, y, 0, 0)
}

// EncodeIndexed encodes an indexed image as a 4bpp TIM if the palette has 16
// or fewer colors, otherwise as an 8bpp TIM. The image is placed at x, y and
// the palette at clutX, clutY in VRAM.
func EncodeIndexed(m *Image, x, y, clutX, clutY int, forceSTP bool) ([]byte, error) {
	if err := checkPlacement("image", x, y); err != nil {
		return nil, err
	}
	if err := checkPlacement("palette", clutX, clutY); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.Mode != Indexed {
		return nil, malformed("indexed encoding requires an indexed image")
	}

	colors := m.Palette.Len()
	if colors > colorsPerPalette8bpp {
		return nil, &PaletteOverflowError{Colors: colors, Capacity: colorsPerPalette8bpp}
	}
	for _, idx := range m.Pix {
		if int(idx) >= colors {
			return nil, malformed("index %d outside palette of %d colors", idx, colors)
		}
	}

	wide := colors > colorsPerPalette4bpp
	depth := uint32(depth4bpp)
	if wide {
		depth = depth8bpp
	}

	clut := packPalette(m.Palette, forceSTP)
	pixels := packIndices(m.Pix, m.Width, m.Height, wide)

	return assemble(pixels, clut, depth, x, y, clutX, clutY)
}

// Options are the encoding parameters for Encode.
type Options struct {
	// VRAM placement of the image
	X, Y int
	// VRAM placement of the palette, ignored for 16bpp images
	ClutX, ClutY int
	// If non-zero, truecolor images are quantized to 16 or 256 colors
	Colors int
	// Keep colors semi-transparent even when fully opaque
	ForceSTP bool
}

// Encode writes the Image m to w in TIM format. Paletted images are written
// as 4bpp or 8bpp. Other images are written as 16bpp unless o.Colors is set
// in which case they are quantized first. A nil o uses the zero Options.
func Encode(w io.Writer, m image.Image, o *Options) error {
	if o == nil {
		o = &Options{}
	}

	im := FromImage(m)

	var (
		b   []byte
		err error
	)

	if im.Mode != Indexed && o.Colors != 0 {
		// Validate the placement before doing any quantization
		if err := checkPlacement("image", o.X, o.Y); err != nil {
			return err
		}
		if err := checkPlacement("palette", o.ClutX, o.ClutY); err != nil {
			return err
		}
		if im, err = Quantize(im, o.Colors); err != nil {
			return err
		}
	}

	if im.Mode == Indexed {
		b, err = EncodeIndexed(im, o.X, o.Y, o.ClutX, o.ClutY, o.ForceSTP)
	} else {
		b, err = EncodeRaw(im, o.X, o.Y, o.ForceSTP)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}
