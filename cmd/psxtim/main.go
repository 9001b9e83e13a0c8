package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/psxtim"
	"github.com/bodgit/psxtim/tim"
	"github.com/urfave/cli/v2"
)

const defaultDB = "psxtim.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func options(c *cli.Context) psxtim.Options {
	return psxtim.Options{
		X:        c.Int("x"),
		Y:        c.Int("y"),
		ClutX:    c.Int("clut-x"),
		ClutY:    c.Int("clut-y"),
		Colors:   c.Int("quantize"),
		ForceSTP: c.Bool("force-stp"),
		Reduce:   c.Bool("reduce"),
	}
}

func conversionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "x",
			Aliases: []string{"xcoord"},
			Usage:   "X coordinate for image placement (0-1023)",
		},
		&cli.IntFlag{
			Name:    "y",
			Aliases: []string{"ycoord"},
			Usage:   "Y coordinate for image placement (0-1023)",
		},
		&cli.IntFlag{
			Name:    "clut-x",
			Aliases: []string{"c"},
			Usage:   "X coordinate for CLUT placement (0-1023)",
		},
		&cli.IntFlag{
			Name:    "clut-y",
			Aliases: []string{"d"},
			Usage:   "Y coordinate for CLUT placement (0-1023)",
		},
		&cli.BoolFlag{
			Name:  "force-stp",
			Usage: "keep opaque colors semi-transparent",
		},
		&cli.IntFlag{
			Name:  "quantize",
			Usage: "quantize truecolor images to 16 or 256 colors",
		},
		&cli.BoolFlag{
			Name:  "reduce",
			Usage: "reduce the colors of images that don't fit when quantizing",
		},
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "psxtim"
	app.Usage = "PlayStation TIM texture conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"PSXTIM_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to texture database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert an image to a TIM file",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output TIM file (default: FILE with a .tim extension)",
				},
			}, conversionFlags()...),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := psxtim.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				file := c.Args().First()
				if err := m.ConvertFile(filepath.Base(file), file, c.String("output"), options(c)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every image in a directory",
			Description: "Each image is written alongside as a TIM file. Options can be set per image with a YAML file of the same name.",
			ArgsUsage:   "DIRECTORY",
			Flags:       conversionFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := psxtim.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer m.Close()

				overlaps, err := m.Batch(c.Args().First(), options(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				for _, overlap := range overlaps {
					fmt.Fprintln(os.Stderr, "warning:", overlap)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List converted textures",
			Action: func(c *cli.Context) error {
				db, err := psxtim.NewTextureDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				textures, err := db.Textures()
				if err != nil {
					return cli.Exit(err, 1)
				}
				for _, t := range textures {
					fmt.Printf("%s\t%dbpp\timage %v", t.Name, t.BPP, t.Image)
					if !t.CLUT.Empty() {
						fmt.Printf("\tclut %v", t.CLUT)
					}
					fmt.Println()
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Write a converted texture from the database",
			ArgsUsage: "NAME FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := psxtim.NewTextureDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				f, err := os.Create(c.Args().Get(1))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				if err := db.Export(c.Args().First(), f); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Show the layout of a TIM file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				h, err := tim.DecodeHeader(f)
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Printf("depth: %dbpp\n", h.BPP)
				fmt.Printf("image: %v (%d rows of %d units)\n", h.Image, h.Image.Dy(), h.Image.Dx())
				if !h.CLUT.Empty() {
					fmt.Printf("clut: %v (%d colors)\n", h.CLUT, h.CLUT.Dx()*h.CLUT.Dy())
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
