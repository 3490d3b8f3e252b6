// Command hdrframe renders one frame of a raw planar Y,V,U file as PNG,
// optionally converted through a LUT, for visual inspection.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vearutop/fasthdr"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(1)
		}
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: hdrframe [flags] WIDTH HEIGHT IN_YUV OUT_PNG")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -lut lut.bin   convert the frame before rendering (default: render input as is)")
	fmt.Fprintln(os.Stderr, "  -frame 0       zero-based frame index")
	fmt.Fprintln(os.Stderr, "  -max 640x360   thumbnail bounds")
}

func run(args []string) error {
	fs := flag.NewFlagSet("hdrframe", flag.ContinueOnError)
	lutPath := fs.String("lut", "", "LUT file")
	frameIdx := fs.Int("frame", 0, "frame index")
	maxSize := fs.String("max", "", "thumbnail bounds WxH")
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 4 {
		return errUsage
	}

	width, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("parse height: %w", err)
	}
	geom, err := fasthdr.NewGeometry(width, height)
	if err != nil {
		return err
	}
	maxW, maxH, err := parseBounds(*maxSize)
	if err != nil {
		return err
	}
	if *frameIdx < 0 {
		return fmt.Errorf("invalid frame index %d", *frameIdx)
	}

	frame, err := readFrame(fs.Arg(2), geom, *frameIdx)
	if err != nil {
		return err
	}

	if *lutPath != "" {
		lut, err := fasthdr.ReadLUTFile(*lutPath)
		if err != nil {
			return err
		}
		fasthdr.ApplyLUT(frame, geom, lut, 0)
	}

	out, err := os.Create(filepath.Clean(fs.Arg(3)))
	if err != nil {
		return err
	}
	if err := fasthdr.WritePreview(out, frame, geom, func(o *fasthdr.PreviewOptions) {
		o.MaxWidth = maxW
		o.MaxHeight = maxH
	}); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func readFrame(path string, geom fasthdr.Geometry, idx int) ([]byte, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size := geom.FrameSize()
	frame := make([]byte, size)
	if _, err := f.ReadAt(frame, int64(idx)*int64(size)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("frame %d not present in %s", idx, path)
		}
		return nil, err
	}
	return frame, nil
}

func parseBounds(s string) (uint, uint, error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid bounds %q, want WxH", s)
	}
	w, err := strconv.ParseUint(ws, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bounds %q: %w", s, err)
	}
	h, err := strconv.ParseUint(hs, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid bounds %q: %w", s, err)
	}
	return uint(w), uint(h), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
