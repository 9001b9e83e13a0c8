/*
Package psxtim is a library for converting images into PlayStation TIM
textures and keeping track of where each texture is placed in VRAM.
*/
package psxtim

import "log"

// Converter converts image files into TIM files, recording each one in a
// TextureDB.
type Converter struct {
	db     *TextureDB
	logger *log.Logger
}

// New returns a Converter using the texture database in file.
func New(file string, logger *log.Logger) (*Converter, error) {
	db, err := NewTextureDB(file)
	if err != nil {
		return nil, err
	}
	return &Converter{
		db:     db,
		logger: logger,
	}, nil
}

// DB returns the texture database.
func (c *Converter) DB() *TextureDB {
	return c.db
}

// Close closes the texture database.
func (c *Converter) Close() error {
	return c.db.Close()
}
