// Command sqlxplus generates Insertable methods for structs annotated with
// the //sqlxplus:insertable directive.
//
//	sqlxplus [-config sqlxplus.yaml] [-watch] [-v] [packages]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/sqlxplus/compiler/gen"
	"github.com/syssam/sqlxplus/compiler/load"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("sqlxplus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "sqlxplus.yaml", "Path to the generator configuration file")
	watchMode := fs.Bool("watch", false, "Regenerate when Go files change")
	verbose := fs.Bool("v", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := gen.LoadConfig(*configPath, gen.WithLogger(logger))
	if err != nil {
		return err
	}
	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = cfg.Patterns
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	regenerate := func(ctx context.Context) error {
		return generate(ctx, cfg, patterns)
	}
	if err := regenerate(ctx); err != nil {
		if !*watchMode {
			return err
		}
		logger.Error("generation failed", "error", err)
	}
	if !*watchMode {
		return nil
	}
	return watch(ctx, cfg, ".", regenerate)
}

func generate(ctx context.Context, cfg *gen.Config, patterns []string) error {
	schemas, err := load.LoadConfig(&packages.Config{Context: ctx}, patterns...)
	if err != nil {
		return err
	}
	if len(schemas) == 0 {
		cfg.Logger.WarnContext(ctx, "no insertable types found", "patterns", patterns)
		return nil
	}
	return gen.Generate(ctx, cfg, schemas)
}
