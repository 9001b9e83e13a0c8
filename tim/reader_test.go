package tim

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode4bpp(t *testing.T) {
	q, err := Quantize(rgbwImage(), 16)
	require.NoError(t, err)
	b, err := EncodeIndexed(q, 0, 0, 0, 0, false)
	require.NoError(t, err)

	m, format, err := image.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, "tim", format)

	pm, ok := m.(*image.Paletted)
	require.True(t, ok)

	// Width includes the row padding
	assert.Equal(t, image.Rect(0, 0, 4, 2), pm.Bounds())
	assert.Len(t, pm.Palette, 16)
	assert.Equal(t, []byte{0, 1, 0, 0, 2, 3, 0, 0}, pm.Pix)
	assert.Equal(t, Color16(0x001f), pm.Palette[0])
	assert.Equal(t, color.NRGBA{0x00, 0x00, 0xff, 0xff}, color.NRGBAModel.Convert(pm.At(0, 1)))
	assert.Equal(t, color.NRGBA{}, color.NRGBAModel.Convert(pm.At(1, 1)))
}

func TestDecode8bpp(t *testing.T) {
	q, err := Quantize(gradient(19, 17), 256)
	require.NoError(t, err)
	require.Greater(t, q.Palette.Len(), 16)
	b, err := EncodeIndexed(q, 0, 0, 0, 0, false)
	require.NoError(t, err)

	m, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)

	pm, ok := m.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 20, 1), pm.Bounds())
	assert.Len(t, pm.Palette, 256)
	assert.Equal(t, append(q.Pix, 0), pm.Pix)
}

func TestDecode16bpp(t *testing.T) {
	m := &Image{
		Width:  2,
		Height: 2,
		Mode:   RGB,
		Pix: []byte{
			0xff, 0xff, 0xff, 0x00, 0x00, 0x00,
			0xff, 0x00, 0x00, 0x00, 0xff, 0x00,
		},
	}
	b, err := EncodeRaw(m, 0, 0, false)
	require.NoError(t, err)

	d, err := Decode(bytes.NewReader(b))
	require.NoError(t, err)

	nm, ok := d.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 2, 2), nm.Bounds())
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, nm.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0x08, 0x08, 0x08, 0xff}, nm.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{0xff, 0x00, 0x00, 0xff}, nm.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{0x00, 0xff, 0x00, 0xff}, nm.NRGBAAt(1, 1))
}

func TestDecodeConfig(t *testing.T) {
	q, err := Quantize(rgbwImage(), 16)
	require.NoError(t, err)
	b, err := EncodeIndexed(q, 0, 0, 0, 0, false)
	require.NoError(t, err)

	c, err := DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.IsType(t, color.Palette{}, c.ColorModel)

	b, err = EncodeRaw(rgbwImage(), 0, 0, false)
	require.NoError(t, err)

	c, err = DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, Model, c.ColorModel)
}

func TestDecodeErrors(t *testing.T) {
	q, err := Quantize(rgbwImage(), 16)
	require.NoError(t, err)
	good, err := EncodeIndexed(q, 0, 0, 0, 0, false)
	require.NoError(t, err)

	tables := []struct {
		name string
		b    []byte
		err  error
	}{
		{"empty", nil, errNotEnough},
		{"short header", good[:6], errNotEnough},
		{"short clut", good[:30], errNotEnough},
		{"short pixels", good[:len(good)-1], errNotEnough},
		{"trailing", append(append([]byte{}, good...), 0), errTooMuch},
		{"version", append([]byte{0x11}, good[1:]...), errBadVersion},
		{"depth", append(append([]byte{}, good[:4]...), append([]byte{0x0b}, good[5:]...)...), errBadDepth},
		{"no clut", append(append([]byte{}, good[:4]...), append([]byte{0x00}, good[5:]...)...), errMissingCLUT},
		{"section size", append(append([]byte{}, good[:8]...), append([]byte{0x2d}, good[9:]...)...), errBadSection},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(table.b))
			assert.Equal(t, table.err, err)
		})
	}
}

func TestDecodeOversizedSection(t *testing.T) {
	// A 32768x32768 16bpp section claims 2 GiB of pixels but none follow
	b := new(bytes.Buffer)
	require.NoError(t, binary.Write(b, binary.LittleEndian, fileHeader{Version: version, Flags: depth16bpp}))
	require.NoError(t, binary.Write(b, binary.LittleEndian, sectionHeader{
		Size:   sectionSize + 32768*32768*2,
		Width:  32768,
		Height: 32768,
	}))
	b.Write([]byte{0x00, 0x00, 0x00, 0x00})

	_, err := Decode(b)
	assert.Equal(t, errNotEnough, err)
}

// stallReader returns (0, nil) once when r is exhausted before reporting
// io.EOF.
type stallReader struct {
	r       io.Reader
	stalled bool
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err == io.EOF && !s.stalled {
		s.stalled = true
		return 0, nil
	}
	return n, err
}

func TestDecodeStallingReader(t *testing.T) {
	q, err := Quantize(rgbwImage(), 16)
	require.NoError(t, err)
	b, err := EncodeIndexed(q, 0, 0, 0, 0, false)
	require.NoError(t, err)

	m, err := Decode(&stallReader{r: bytes.NewReader(b)})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), m.Bounds())
}

func TestDecodeHeader(t *testing.T) {
	q, err := Quantize(rgbwImage(), 16)
	require.NoError(t, err)
	b, err := EncodeIndexed(q, 320, 8, 0, 480, false)
	require.NoError(t, err)

	h, err := DecodeHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, &Header{
		BPP:   4,
		Image: image.Rect(320, 8, 321, 10),
		CLUT:  image.Rect(0, 480, 16, 481),
	}, h)

	b, err = EncodeRaw(rgbwImage(), 64, 0, false)
	require.NoError(t, err)

	h, err = DecodeHeader(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 16, h.BPP)
	assert.Equal(t, image.Rect(64, 0, 66, 2), h.Image)
	assert.True(t, h.CLUT.Empty())
}
