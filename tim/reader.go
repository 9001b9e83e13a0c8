package tim

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

// readN reads exactly n bytes from r. The buffer grows with the data
// actually read so a bogus length can't force a huge allocation.
func readN(r io.Reader, n int64) ([]byte, error) {
	b := new(bytes.Buffer)
	if _, err := io.CopyN(b, r, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return b.Bytes(), nil
}

type section struct {
	sectionHeader
	data []byte
}

type decoder struct {
	r io.Reader

	header  fileHeader
	clut    *section
	pixels  section
	palette color.Palette

	width, height int

	image image.Image
}

func (d *decoder) readSection(s *section, configOnly bool) error {
	if err := binary.Read(d.r, binary.LittleEndian, &s.sectionHeader); err != nil {
		return err
	}
	if s.Size < sectionSize || int(s.Size)-sectionSize != int(s.Width)*int(s.Height)*2 {
		return errBadSection
	}
	if configOnly {
		return nil
	}

	var err error
	s.data, err = readN(d.r, int64(s.Size-sectionSize))
	return err
}

func (d *decoder) readPalette() error {
	d.clut = new(section)
	if err := d.readSection(d.clut, false); err != nil {
		return err
	}

	d.palette = make(color.Palette, len(d.clut.data)>>1)
	for i := range d.palette {
		d.palette[i] = Color16(binary.LittleEndian.Uint16(d.clut.data[i*2:]))
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := binary.Read(d.r, binary.LittleEndian, &d.header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}
	if d.header.Version != version {
		return errBadVersion
	}

	depth := d.header.Flags & depthMask
	if depth != depth4bpp && depth != depth8bpp && depth != depth16bpp {
		return errBadDepth
	}

	if d.header.Flags&flagPalette != 0 {
		if err := d.readPalette(); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errNotEnough
			}
			return err
		}
	} else if depth != depth16bpp {
		return errMissingCLUT
	}

	if err := d.readSection(&d.pixels, configOnly); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errNotEnough
		}
		return err
	}

	// Widths are stored in 16-bit units
	d.height = int(d.pixels.Height)
	switch depth {
	case depth4bpp:
		d.width = int(d.pixels.Width) * 4
	case depth8bpp:
		d.width = int(d.pixels.Width) * 2
	case depth16bpp:
		d.width = int(d.pixels.Width)
	}

	if configOnly {
		return nil
	}

	var tmp [1]byte
	switch _, err := io.ReadFull(r, tmp[:]); err {
	case io.EOF:
	case nil:
		return errTooMuch
	default:
		return err
	}

	stride := int(d.pixels.Width) * 2
	rect := image.Rect(0, 0, d.width, d.height)

	switch depth {
	case depth16bpp:
		m := image.NewNRGBA(rect)
		for y := 0; y < d.height; y++ {
			for x := 0; x < d.width; x++ {
				m.SetNRGBA(x, y, Color16(binary.LittleEndian.Uint16(d.pixels.data[y*stride+x*2:])).NRGBA())
			}
		}
		d.image = m
	case depth8bpp:
		m := image.NewPaletted(rect, d.palette)
		for y := 0; y < d.height; y++ {
			copy(m.Pix[y*m.Stride:], d.pixels.data[y*stride:y*stride+stride])
		}
		d.image = m
	case depth4bpp:
		m := image.NewPaletted(rect, d.palette)
		for y := 0; y < d.height; y++ {
			for x := 0; x < d.width; x++ {
				b := d.pixels.data[y*stride+x>>1]
				m.SetColorIndex(x, y, b>>(uint(x&1)<<2)&0x0f)
			}
		}
		d.image = m
	}

	return nil
}

// Decode reads a TIM image from r and returns it as an image.Image. 16bpp
// images are returned as *image.NRGBA and indexed images as *image.Paletted.
// The width includes any row padding present in the file.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a TIM image without
// decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	var model color.Model = Model
	if d.palette != nil {
		model = d.palette
	}
	return image.Config{
		ColorModel: model,
		Width:      d.width,
		Height:     d.height,
	}, nil
}

// Header describes the layout of a TIM file. Rectangles are in VRAM units
// of 16-bit words; CLUT is empty if there is no palette.
type Header struct {
	BPP   int
	Image image.Rectangle
	CLUT  image.Rectangle
}

// DecodeHeader returns the color depth and VRAM placement of a TIM image
// without decoding the pixel data.
func DecodeHeader(r io.Reader) (*Header, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return nil, err
	}

	h := &Header{
		Image: image.Rect(0, 0, int(d.pixels.Width), int(d.pixels.Height)).Add(image.Pt(int(d.pixels.X), int(d.pixels.Y))),
	}
	switch d.header.Flags & depthMask {
	case depth4bpp:
		h.BPP = 4
	case depth8bpp:
		h.BPP = 8
	case depth16bpp:
		h.BPP = 16
	}
	if d.clut != nil {
		h.CLUT = image.Rect(0, 0, int(d.clut.Width), int(d.clut.Height)).Add(image.Pt(int(d.clut.X), int(d.clut.Y)))
	}

	return h, nil
}
