// hftool is a CLI utility for working with stored heightfields (.hfd).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/fractal-terrain/internal/export"
	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "gen", "generate":
		cmdGen(args)
	case "info":
		cmdInfo(args)
	case "obj":
		cmdOBJ(args)
	case "png", "preview":
		cmdPNG(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hftool - fractal heightfield utility

Usage:
  hftool <command> [options]

Commands:
  gen [-n iterations] [-r roughness] [-seed s] [-z scale] <out.hfd>
                                     Generate a heightfield
  info <file.hfd>                    Show heightfield information
  obj [-extent e] <file.hfd> <out.obj>
                                     Export the triangulated mesh
  png [-scale n] <file.hfd> <out.png> Export a grayscale preview

Examples:
  hftool gen -n 6 -r 0.3 -seed 7 hills.hfd
  hftool info hills.hfd
  hftool obj hills.hfd hills.obj
  hftool png -scale 4 hills.hfd hills.png`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	iterations := fs.Int("n", 4, "Iterations (grid side 2^n+1)")
	roughness := fs.Float64("r", 0.25, "Roughness, > 0")
	seed := fs.Uint64("seed", 1, "Random seed")
	elevation := fs.Float64("z", 1, "Elevation scale")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hftool gen [options] <out.hfd>")
		os.Exit(1)
	}

	h, err := heightfield.GenerateSeeded(heightfield.Params{Roughness: *roughness, Iterations: *iterations}, *seed)
	if err != nil {
		fail(err)
	}
	h = h.Scaled(*elevation)
	h.Freeze()

	if err := heightfield.WriteFile(fs.Arg(0), h); err != nil {
		fail(err)
	}
	printInfo(os.Stdout, fs.Arg(0), h)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hftool info <file.hfd>")
		os.Exit(1)
	}

	h, err := heightfield.ReadFile(args[0])
	if err != nil {
		fail(err)
	}
	printInfo(os.Stdout, args[0], h)
}

func printInfo(w io.Writer, path string, h *heightfield.Heightfield) {
	lo, hi := h.MinMax()
	fmt.Fprintf(w, "File:       %s\n", path)
	fmt.Fprintf(w, "Iterations: %d\n", h.Iterations())
	fmt.Fprintf(w, "Roughness:  %g\n", h.Roughness())
	fmt.Fprintf(w, "Size:       %dx%d\n", h.Size(), h.Size())
	fmt.Fprintf(w, "Triangles:  %d\n", mesh.Count(h.Size()))
	fmt.Fprintf(w, "Elevation:  %.4f .. %.4f\n", lo, hi)
}

func cmdOBJ(args []string) {
	fs := flag.NewFlagSet("obj", flag.ExitOnError)
	extent := fs.Float64("extent", 1, "Footprint half-extent")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hftool obj [-extent e] <file.hfd> <out.obj>")
		os.Exit(1)
	}

	h, err := heightfield.ReadFile(fs.Arg(0))
	if err != nil {
		fail(err)
	}
	m, err := mesh.Build(h, *extent)
	if err != nil {
		fail(err)
	}
	if err := export.WriteOBJFile(fs.Arg(1), m, "terrain"); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %d vertices, %d triangles to %s\n", len(m.Vertices), m.TriangleCount(), fs.Arg(1))
}

func cmdPNG(args []string) {
	fs := flag.NewFlagSet("png", flag.ExitOnError)
	scale := fs.Int("scale", 8, "Pixels per grid point")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hftool png [-scale n] <file.hfd> <out.png>")
		os.Exit(1)
	}

	h, err := heightfield.ReadFile(fs.Arg(0))
	if err != nil {
		fail(err)
	}
	if err := export.WritePreviewFile(fs.Arg(1), h, *scale); err != nil {
		fail(err)
	}
	side := h.Size() * *scale
	fmt.Printf("Wrote %dx%d preview to %s\n", side, side, fs.Arg(1))
}
