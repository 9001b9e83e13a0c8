package psxtim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/psxtim/tim"
	"gopkg.in/yaml.v3"
)

// ErrInvalidColors is returned when a palette size other than 16 or 256 is
// requested.
var ErrInvalidColors = errors.New("colors must be 16 or 256")

// Options control how a single image is converted. They can be overridden
// per image with a YAML file sharing the image's base filename, e.g.
// "sprite.yaml" for "sprite.png".
type Options struct {
	X        int  `yaml:"x"`
	Y        int  `yaml:"y"`
	ClutX    int  `yaml:"clut_x"`
	ClutY    int  `yaml:"clut_y"`
	Colors   int  `yaml:"colors,omitempty"`
	ForceSTP bool `yaml:"force_stp,omitempty"`

	// Reduce allows lossy color reduction when an image has more than
	// Colors unique colors.
	Reduce bool `yaml:"reduce,omitempty"`
}

func (o Options) validate() error {
	switch o.Colors {
	case 0, 16, 256:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidColors, o.Colors)
	}
	if o.Reduce && o.Colors == 0 {
		return errors.New("reduce requires colors to be set")
	}
	return nil
}

func (o Options) timOptions() *tim.Options {
	return &tim.Options{
		X:        o.X,
		Y:        o.Y,
		ClutX:    o.ClutX,
		ClutY:    o.ClutY,
		Colors:   o.Colors,
		ForceSTP: o.ForceSTP,
	}
}

// String returns o as a single line, used to detect changed options.
func (o Options) String() string {
	b, err := yaml.Marshal(o)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// LoadOptions reads YAML options from r, using o for any value that isn't
// set.
func LoadOptions(r io.Reader, o Options) (Options, error) {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&o); err != nil && err != io.EOF {
		return Options{}, err
	}
	if err := o.validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadOptionsFile is like LoadOptions but reads from the named file. If the
// file doesn't exist o is returned unchanged.
func LoadOptionsFile(file string, o Options) (Options, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return o, o.validate()
		}
		return Options{}, err
	}
	defer f.Close()

	o, err = LoadOptions(f, o)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", file, err)
	}
	return o, nil
}

func changeExt(file, ext string) string {
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}
