package psxtim

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/bodgit/psxtim/tim"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func encodeImage(m image.Image, o Options) ([]byte, error) {
	b := new(bytes.Buffer)
	err := tim.Encode(b, m, o.timOptions())

	var overflow *tim.PaletteOverflowError
	if errors.As(err, &overflow) && o.Reduce {
		b.Reset()
		err = tim.Encode(b, reduce(m, o.Colors), o.timOptions())
	}
	if err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Convert reads an image from r and returns it encoded as a TIM file. The
// result is recorded in the texture database under name; if the same image
// was previously converted with the same options the stored copy is
// returned instead.
func (c *Converter) Convert(name string, r io.Reader, o Options) ([]byte, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	h := sha1.New()
	m, _, err := image.Decode(io.TeeReader(r, h))
	if err != nil {
		return nil, err
	}
	sha := fmt.Sprintf("%X", h.Sum(nil))

	b, err := c.db.FindTexture(name, sha, o.String())
	if err != nil {
		return nil, err
	}
	if b != nil {
		c.logger.Printf("Using existing texture for \"%s\"\n", name)
		return b, nil
	}

	c.logger.Printf("Converting \"%s\" with %s\n", name, o)

	if b, err = encodeImage(m, o); err != nil {
		return nil, err
	}

	if err := c.db.AddTexture(&Texture{
		Name:    name,
		SHA1:    sha,
		Options: o.String(),
		Data:    b,
	}); err != nil {
		return nil, err
	}

	return b, nil
}

// ConvertFile converts the image in file to a TIM file written to out. If
// out is empty the TIM file is written alongside the image. Options are
// read from a YAML file alongside the image, falling back to o.
func (c *Converter) ConvertFile(name, file, out string, o Options) error {
	o, err := LoadOptionsFile(changeExt(file, ".yaml"), o)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := c.Convert(name, f, o)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if out == "" {
		out = changeExt(file, ".tim")
	}

	return os.WriteFile(out, b, 0644)
}
