package psxtim

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "psxtim.db"), log.New(ioutil.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() {
		c.Close()
	})
	return c
}

// testImage returns an opaque image with the given number of unique colors.
func testImage(width, height, colors int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		c := i % colors
		m.SetNRGBA(i%width, i/width, color.NRGBA{byte(c), byte(c >> 8), 0x80, 0xff})
	}
	return m
}

func encodePNG(t *testing.T, m image.Image) []byte {
	t.Helper()
	b := new(bytes.Buffer)
	require.NoError(t, png.Encode(b, m))
	return b.Bytes()
}

func writePNG(t *testing.T, file string, m image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, encodePNG(t, m), 0644))
}
