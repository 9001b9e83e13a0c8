package psxtim

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/bodgit/psxtim/tim"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a texture isn't in the database.
var ErrNotFound = errors.New("texture not found")

const (
	regionImage = "image"
	regionCLUT  = "clut"
)

// TextureDB records every converted texture along with where it is placed
// in VRAM.
type TextureDB struct {
	db *sql.DB
}

// Texture is a single converted image.
type Texture struct {
	Name    string
	SHA1    string
	Options string
	BPP     int
	Image   image.Rectangle
	CLUT    image.Rectangle
	Data    []byte
}

// Overlap is a pair of textures that use the same area of VRAM.
type Overlap struct {
	A, B             string
	ARegion, BRegion string
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s (%s) overlaps %s (%s)", o.A, o.ARegion, o.B, o.BRegion)
}

// NewTextureDB opens or creates the database in file.
func NewTextureDB(file string) (*TextureDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS texture (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE, sha1 TEXT NOT NULL, options TEXT NOT NULL, bpp INTEGER NOT NULL, tim BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS region (texture_id INTEGER NOT NULL, kind TEXT NOT NULL, x INTEGER NOT NULL, y INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, FOREIGN KEY(texture_id) REFERENCES texture(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &TextureDB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *TextureDB) Close() error {
	return db.db.Close()
}

// FindTexture returns the TIM data for name if it was previously converted
// from the same source with the same options, otherwise nil.
func (db *TextureDB) FindTexture(name, sha1, options string) ([]byte, error) {
	var b []byte
	switch err := db.db.QueryRow("SELECT tim FROM texture WHERE name = ? AND sha1 = ? AND options = ?", name, sha1, options).Scan(&b); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return b, nil
	default:
		return nil, err
	}
}

// AddTexture adds or replaces the texture t. The BPP and VRAM placement are
// read from t.Data.
func (db *TextureDB) AddTexture(t *Texture) error {
	h, err := tim.DecodeHeader(bytes.NewReader(t.Data))
	if err != nil {
		return err
	}
	t.BPP, t.Image, t.CLUT = h.BPP, h.Image, h.CLUT

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM texture WHERE name = ?", t.Name); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO texture (name, sha1, options, bpp, tim) VALUES (?, ?, ?, ?, ?)", t.Name, t.SHA1, t.Options, t.BPP, t.Data)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	regions := map[string]image.Rectangle{regionImage: t.Image}
	if !t.CLUT.Empty() {
		regions[regionCLUT] = t.CLUT
	}
	for kind, r := range regions {
		if _, err := tx.Exec("INSERT INTO region (texture_id, kind, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?)", id, kind, r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Textures returns every texture in the database ordered by name, without
// the TIM data.
func (db *TextureDB) Textures() ([]Texture, error) {
	rows, err := db.db.Query("SELECT t.name, t.sha1, t.options, t.bpp, r.kind, r.x, r.y, r.width, r.height FROM texture AS t JOIN region AS r ON r.texture_id = t.id ORDER BY t.name, r.kind DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var textures []Texture
	for rows.Next() {
		var t Texture
		var kind string
		var x, y, w, h int
		if err := rows.Scan(&t.Name, &t.SHA1, &t.Options, &t.BPP, &kind, &x, &y, &w, &h); err != nil {
			return nil, err
		}
		if n := len(textures); n == 0 || textures[n-1].Name != t.Name {
			textures = append(textures, t)
		}
		r := image.Rect(x, y, x+w, y+h)
		switch kind {
		case regionImage:
			textures[len(textures)-1].Image = r
		case regionCLUT:
			textures[len(textures)-1].CLUT = r
		}
	}

	return textures, rows.Err()
}

// Overlaps returns every pair of VRAM regions that intersect, including a
// texture's palette overlapping its own image.
func (db *TextureDB) Overlaps() ([]Overlap, error) {
	rows, err := db.db.Query("SELECT ta.name, a.kind, tb.name, b.kind FROM region AS a JOIN region AS b ON (a.texture_id < b.texture_id OR (a.texture_id = b.texture_id AND a.kind < b.kind)) JOIN texture AS ta ON a.texture_id = ta.id JOIN texture AS tb ON b.texture_id = tb.id WHERE a.x < b.x + b.width AND b.x < a.x + a.width AND a.y < b.y + b.height AND b.y < a.y + a.height ORDER BY ta.name, tb.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overlaps []Overlap
	for rows.Next() {
		var o Overlap
		if err := rows.Scan(&o.A, &o.ARegion, &o.B, &o.BRegion); err != nil {
			return nil, err
		}
		overlaps = append(overlaps, o)
	}

	return overlaps, rows.Err()
}

// Export writes the TIM data for the named texture to w.
func (db *TextureDB) Export(name string, w io.Writer) error {
	var b []byte
	switch err := db.db.QueryRow("SELECT tim FROM texture WHERE name = ?", name).Scan(&b); err {
	case sql.ErrNoRows:
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case nil:
		_, err = w.Write(b)
		return err
	default:
		return err
	}
}
