// Command hdrsdr converts a raw planar PQ HDR YUV stream to SDR using a
// precomputed LUT.
//
//	<decoder> | hdrsdr [flags] WIDTH HEIGHT LUT | <encoder>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/vearutop/fasthdr"
	"github.com/vearutop/fasthdr/internal/config"
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
	fmt.Fprintln(os.Stderr, "Usage: hdrsdr [flags] WIDTH HEIGHT LUT_PATH")
	fmt.Fprintln(os.Stderr, "Reads planar Y,V,U frames from stdin and writes converted frames to stdout.")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -config cfg.yaml  -buffers 16  -workers 0  -strict  -log-level info")
}

func run(args []string) error {
	fs := flag.NewFlagSet("hdrsdr", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	buffers := fs.Int("buffers", 0, "frame buffers in the pool")
	workers := fs.Int("workers", 0, "per-frame workers, 0 = GOMAXPROCS")
	strict := fs.Bool("strict", false, "fail if input ends mid-frame")
	logLevel := fs.String("log-level", "", "debug, info, warn, error")
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 3 {
		return errUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "buffers":
			cfg.Buffers = *buffers
		case "workers":
			cfg.Workers = *workers
		case "strict":
			cfg.Strict = *strict
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		return err
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

	logger := cfg.Logger().With("run", uuid.NewString())
	slog.SetDefault(logger)

	lut, err := fasthdr.ReadLUTFile(fs.Arg(2))
	if err != nil {
		return err
	}

	p, err := fasthdr.NewPipeline(geom, lut, func(o *fasthdr.Options) {
		o.Buffers = cfg.Buffers
		o.Workers = cfg.Workers
		o.Strict = cfg.Strict
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := bufio.NewWriterSize(os.Stdout, geom.FrameSize())
	start := time.Now()
	st, err := p.Run(ctx, os.Stdin, out)
	elapsed := time.Since(start)

	fps := 0.0
	if elapsed > 0 {
		fps = float64(st.FramesWritten) / elapsed.Seconds()
	}
	logger.Info("hdrsdr: done",
		"geometry", geom.String(),
		"frames", st.FramesWritten,
		"bytes", st.BytesWritten,
		"truncated_bytes", st.TruncatedBytes,
		"elapsed", elapsed.Round(time.Millisecond),
		"fps", strconv.FormatFloat(fps, 'f', 1, 64))

	return err
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
