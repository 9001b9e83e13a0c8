package psxtim

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	c := newConverter(t)
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "a.png"), testImage(4, 4, 4))
	writePNG(t, filepath.Join(dir, "sub", "b.png"), testImage(4, 4, 4))
	writePNG(t, filepath.Join(dir, ".hidden", "c.png"), testImage(4, 4, 4))
	writePNG(t, filepath.Join(dir, ".d.png"), testImage(4, 4, 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.yaml"), []byte("x: 64\nclut_x: 16\n"), 0644))

	overlaps, err := c.Batch(dir, Options{ClutY: 480, Colors: 16})
	require.NoError(t, err)
	assert.Empty(t, overlaps)

	assert.FileExists(t, filepath.Join(dir, "a.tim"))
	assert.FileExists(t, filepath.Join(dir, "sub", "b.tim"))
	assert.NoFileExists(t, filepath.Join(dir, ".hidden", "c.tim"))
	assert.NoFileExists(t, filepath.Join(dir, ".d.tim"))
	assert.NoFileExists(t, filepath.Join(dir, "notes.tim"))

	textures, err := c.DB().Textures()
	require.NoError(t, err)
	require.Len(t, textures, 2)
	assert.Equal(t, "a.png", textures[0].Name)
	assert.Equal(t, "sub/b.png", textures[1].Name)
	assert.Equal(t, 64, textures[1].Image.Min.X)
	assert.Equal(t, 16, textures[1].CLUT.Min.X)
}

func TestBatchOverlaps(t *testing.T) {
	c := newConverter(t)
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "a.png"), testImage(4, 4, 4))
	writePNG(t, filepath.Join(dir, "b.png"), testImage(4, 4, 4))

	overlaps, err := c.Batch(dir, Options{ClutY: 480, Colors: 16})
	require.NoError(t, err)

	// Both images are placed at 0, 0 and both palettes at 0, 480
	require.Len(t, overlaps, 2)
	for _, overlap := range overlaps {
		assert.ElementsMatch(t, []string{"a.png", "b.png"}, []string{overlap.A, overlap.B})
		assert.Equal(t, overlap.ARegion, overlap.BRegion)
	}

	// Each palette also lands on its own image
	overlaps, err = c.Batch(dir, Options{Colors: 16})
	require.NoError(t, err)
	require.Len(t, overlaps, 6)
}

func TestImageWorkerCancelled(t *testing.T) {
	c := newConverter(t)
	dir := t.TempDir()

	file := filepath.Join(dir, "a.png")
	writePNG(t, file, testImage(4, 4, 4))

	in := make(chan string, 1)
	in <- file
	close(in)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errc, err := c.imageWorker(ctx, dir, in, Options{Colors: 16})
	require.NoError(t, err)
	for err := range errc {
		assert.NoError(t, err)
	}

	assert.NoFileExists(t, filepath.Join(dir, "a.tim"))
	textures, err := c.DB().Textures()
	require.NoError(t, err)
	assert.Empty(t, textures)
}

func TestBatchError(t *testing.T) {
	c := newConverter(t)
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "a.png"), testImage(8, 8, 17))

	_, err := c.Batch(dir, Options{Colors: 16})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a.png")
}
