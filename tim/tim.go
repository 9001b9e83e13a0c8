/*
Package tim implements a PlayStation TIM texture encoder and decoder.

A TIM file starts with two little-endian 32-bit words; the format version
(always 0x10) and a flags word holding the color depth in bits 0-1 and a
has-palette bit in bit 3. This is followed by an optional CLUT section and
then exactly one pixel data section. Each section starts with a 12 byte
header; the total section size in bytes (including the header), the VRAM X
and Y placement, the row length measured in 16-bit units and the number of
rows.

Colors are stored as 16-bit words packed as SBBBBBGGGGGRRRRR where S is the
semi-transparency (STP) flag. The word 0x0000 is treated by the GPU as fully
transparent.

Pixel data is either raw colors (16bpp), one palette index per byte (8bpp) or
two palette indices per byte (4bpp) with the first pixel in the low nibble.
Every row is padded to an even number of bytes.
*/
package tim

import "image"

const (
	version = 0x10

	headerSize  = 8
	sectionSize = 12

	depthMask   = 3 << 0
	depth4bpp   = 0 << 0
	depth8bpp   = 1 << 0
	depth16bpp  = 2 << 0
	flagPalette = 1 << 3

	maxCoordinate = 1023

	colorsPerPalette4bpp = 16
	colorsPerPalette8bpp = 256
)

func init() {
	image.RegisterFormat("tim", "\x10\x00\x00\x00", Decode, DecodeConfig)
}
