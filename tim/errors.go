package tim

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedImage is returned when an image buffer does not match its
	// declared dimensions and color mode.
	ErrMalformedImage = errors.New("tim: malformed image")

	// ErrInvalidCapacity is returned when a palette capacity other than 16
	// or 256 colors is requested.
	ErrInvalidCapacity = errors.New("tim: palette capacity must be 16 or 256")

	errNotEnough   = errors.New("tim: not enough image data")
	errTooMuch     = errors.New("tim: too much image data")
	errBadVersion  = errors.New("tim: invalid version")
	errBadDepth    = errors.New("tim: unsupported color depth")
	errBadSection  = errors.New("tim: invalid section header")
	errMissingCLUT = errors.New("tim: indexed image without palette")
)

// PaletteOverflowError is returned when an image contains more unique colors
// than the palette can hold.
type PaletteOverflowError struct {
	Colors   int
	Capacity int
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("tim: image contains %d unique colors (must be %d or less)", e.Colors, e.Capacity)
}

// PlacementError is returned when a VRAM coordinate is outside 0-1023.
type PlacementError struct {
	Which string
	X, Y  int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("tim: %s X/Y coordinates (%d, %d) must be in 0-%d range", e.Which, e.X, e.Y, maxCoordinate)
}

func checkPlacement(which string, x, y int) error {
	if x < 0 || x > maxCoordinate || y < 0 || y > maxCoordinate {
		return &PlacementError{Which: which, X: x, Y: y}
	}
	return nil
}

func malformed(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformedImage}, a...)...)
}
