package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/fetch"
	"github.com/johnwards/menuseed/internal/seed"
)

// parseFlags parses args, treating -h as success.
func parseFlags(fs *flag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, errUsage
	}
	if fs.NArg() > 0 {
		return false, fmt.Errorf("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return false, nil
}

// newSeeder wires a Seeder to the configured backends. Metrics are
// registered on reg.
func newSeeder(cfg config.Config, b *backends, reg prometheus.Registerer) *seed.Seeder {
	opts := []seed.Option{
		seed.WithLogger(slog.Default()),
		seed.WithMetrics(seed.NewMetrics(reg)),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, seed.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}

	return seed.New(b.docs, b.files, fetch.NewDownloader(newHTTPClient(cfg)), seed.Config{
		DatabaseID: cfg.DatabaseID,
		Collections: seed.Collections{
			Categories:         cfg.CategoriesCollection,
			Customizations:     cfg.CustomizationsCollection,
			Menu:               cfg.MenuCollection,
			MenuCustomizations: cfg.MenuCustomizationsCollection,
		},
		BucketID:          cfg.Bucket,
		CacheDir:          cfg.CacheDir,
		DeleteConcurrency: cfg.DeleteConcurrency,
		StrictClear:       cfg.StrictClear,
	}, opts...)
}

func seedCmd(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	dataPath := fs.String("data", cfg.DataPath, "dataset file (.json, .yaml); empty uses the built-in menu")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ds, err := loadDataset(*dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	b, err := openBackends(ctx, cfg, newHTTPClient(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = b.Close(context.WithoutCancel(ctx)) }()

	reg := prometheus.NewRegistry()
	slog.Info("starting seed", "backend", cfg.Backend, "storage", cfg.Storage, "database", cfg.DatabaseID)
	res := newSeeder(cfg, b, reg).Seed(ctx, ds)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			slog.Warn("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if !res.Success {
		return fmt.Errorf("seed failed at %q after %d steps: %w", res.FailedStep, res.StepsCompleted, res.Err)
	}

	c := res.Counts
	_, err = fmt.Fprintf(stdout, "seeded %d categories, %d customizations, %d menu items, %d links, %d images in %s\n",
		c.Categories, c.Customizations, c.MenuItems, c.Links, c.Images, res.Duration.Round(time.Millisecond))
	return err
}

func validateCmd(cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	dataPath := fs.String("data", cfg.DataPath, "dataset file (.json, .yaml); empty uses the built-in menu")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}

	ds, err := loadDataset(*dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if err := ds.CheckReferences(); err != nil {
		return fmt.Errorf("dataset references: %w", err)
	}

	_, err = fmt.Fprintf(stdout, "dataset ok: %d categories, %d customizations, %d menu items, %d links\n",
		len(ds.Categories), len(ds.Customizations), len(ds.Menu), ds.LinkCount())
	return err
}
