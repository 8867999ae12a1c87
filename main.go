package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/internal/ctxlog"
	"hstin/sdf2bsdf/internal/render"
)

var errUsage = errors.New("missing input files")

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("sdf2bsdf", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Setup custom usage
	fs.Usage = func() {
		fmt.Fprintf(stderr, "SDF to BSDF Converter\n\n")
		fmt.Fprintf(stderr, "Usage: sdf2bsdf [options] input.sdf [input.sdf ...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  Basic:     sdf2bsdf 40:41:74:75.sdf\n")
		fmt.Fprintf(stderr, "  Out dir:   sdf2bsdf -o /data/bsdf *.sdf.gz\n")
		fmt.Fprintf(stderr, "  Catalog:   sdf2bsdf -catalog grids.db -preview *.sdf\n")
	}

	var out string
	fs.StringVar(&out, "out", "", "Output directory (default: current directory)")
	fs.StringVar(&out, "o", "", "Shorthand for -out")
	configFile := fs.String("config", "", "TOML config file")
	catalog := fs.String("catalog", "", "SQLite catalog to record converted grids in")
	preview := fs.Bool("preview", false, "Also write a WebP preview next to each output")
	colors := fs.String("colors", "", "Color map file for previews (default: built-in ramp)")
	quality := fs.Int("quality", config.DefaultQuality, "WebP quality (1-100)")
	verbose := fs.Bool("verbose", false, "Show detailed progress")
	help := fs.Bool("help", false, "Show help")

	// Parse flags
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	// Show help if requested
	if *help {
		fs.Usage()
		return nil
	}

	cfg := &config.Config{
		Inputs:     fs.Args(),
		NumWorkers: runtime.NumCPU(),
		Quality:    config.DefaultQuality,
	}

	if *configFile != "" {
		f, err := config.LoadFile(*configFile)
		if err != nil {
			return err
		}
		f.Apply(cfg)
	}

	// Explicit flags win over the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out", "o":
			cfg.OutputDir = out
		case "catalog":
			cfg.Catalog = *catalog
		case "preview":
			cfg.Preview = *preview
		case "colors":
			cfg.ColorMap = *colors
		case "quality":
			cfg.Quality = *quality
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	if len(cfg.Inputs) == 0 {
		fs.Usage()
		return errUsage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := ctxlog.WithLogger(context.Background(), logger)
	return render.Generate(ctx, cfg)
}
