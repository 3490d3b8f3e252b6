// Command hdrsdrgen precomputes the HDR to SDR LUT used by hdrsdr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
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
	fmt.Fprintln(os.Stderr, "Usage: hdrsdrgen [flags] LUT_PATH")
	fmt.Fprintln(os.Stderr, "Writes a raw LUT; a .zst suffix stores it zstd-compressed.")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  -config cfg.yaml  -workers 0  -stages pq-linear,tonemap,srgb  -saturation 1")
	fmt.Fprintln(os.Stderr, "Stages:", strings.Join(fasthdr.StageNames(), ", "))
}

func run(args []string) error {
	fs := flag.NewFlagSet("hdrsdrgen", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	workers := fs.Int("workers", 0, "build workers, 0 = GOMAXPROCS")
	stages := fs.String("stages", "", "comma-separated transform stages")
	saturation := fs.Float64("saturation", 1, "factor for the saturation stage")
	logLevel := fs.String("log-level", "", "debug, info, warn, error")
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "stages":
			cfg.Stages = splitStages(*stages)
		case "saturation":
			cfg.Saturation = *saturation
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := cfg.Logger().With("run", uuid.NewString())
	slog.SetDefault(logger)

	t, err := fasthdr.ParseStages(cfg.Stages, fasthdr.StageOptions{Saturation: cfg.Saturation})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	lut, err := fasthdr.BuildLUT(ctx, t, cfg.Workers)
	if err != nil {
		return fmt.Errorf("build lut: %w", err)
	}
	logger.Debug("hdrsdrgen: lut built",
		"stages", strings.Join(t.Names(), ","),
		"elapsed", time.Since(start).Round(time.Millisecond))

	path := fs.Arg(0)
	if err := fasthdr.WriteLUTFile(path, lut); err != nil {
		return err
	}
	logger.Info("hdrsdrgen: lut written",
		"path", path,
		"stages", strings.Join(t.Names(), ","),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return nil
}

// splitStages parses a comma-separated stage list. Blank input selects the
// default chain.
func splitStages(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
