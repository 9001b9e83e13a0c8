package tim

import "image/color"

const (
	lowerAlphaBound = 0x20
	upperAlphaBound = 0xe0

	stpBit = 1 << 15

	// The GPU treats 0x0000 as fully transparent so opaque black is
	// written as a very dark gray instead.
	transparentColor Color16 = 0x0000
	blackColor       Color16 = 0x0421
)

// Color16 is a 15-bit RGB color with a semi-transparency flag, packed as
// SBBBBBGGGGGRRRRR.
type Color16 uint16

// ReduceChannel maps an 8-bit channel onto 5 bits. It is a fixed-point
// approximation of round(c / 255 * 31).
func ReduceChannel(c uint8) uint16 {
	return (uint16(c)*249 + 1014) >> 11
}

// ToColor16 converts an 8-bit per channel color. When hasAlpha is false the
// color is treated as fully opaque.
func ToColor16(r, g, b, a uint8, hasAlpha, forceSTP bool) Color16 {
	if !hasAlpha {
		a = 0xff
	}

	solid := Color16(ReduceChannel(r) | ReduceChannel(g)<<5 | ReduceChannel(b)<<10)

	switch {
	case a <= lowerAlphaBound:
		return transparentColor
	case a <= upperAlphaBound, forceSTP:
		return solid | stpBit
	case solid == transparentColor:
		return blackColor
	default:
		return solid
	}
}

// STP reports whether the semi-transparency flag is set.
func (c Color16) STP() bool {
	return c&stpBit != 0
}

func expand(c uint16) uint8 {
	c &= 0x1f
	return uint8(c<<3 | c>>2)
}

// RGBA implements color.Color. The transparent word decodes to transparent
// black and semi-transparent colors decode as half opaque.
func (c Color16) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA returns the 8-bit per channel equivalent of c.
func (c Color16) NRGBA() color.NRGBA {
	switch {
	case c == transparentColor:
		return color.NRGBA{}
	case c.STP():
		return color.NRGBA{expand(uint16(c)), expand(uint16(c) >> 5), expand(uint16(c) >> 10), 0x80}
	default:
		return color.NRGBA{expand(uint16(c)), expand(uint16(c) >> 5), expand(uint16(c) >> 10), 0xff}
	}
}

// Model converts any color to a Color16, forcing nothing semi-transparent.
var Model color.Model = color.ModelFunc(func(c color.Color) color.Color {
	if c16, ok := c.(Color16); ok {
		return c16
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ToColor16(n.R, n.G, n.B, n.A, true, false)
})
