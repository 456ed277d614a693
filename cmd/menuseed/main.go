// Command menuseed wipes a menu backend and repopulates it from a dataset.
//
// Usage:
//
//	menuseed [seed|validate|signup|serve] [flags]
//
// With no command it seeds. Settings come from MENUSEED_* environment
// variables and an optional .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/dataset"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	cmd := "seed"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "seed":
		return seedCmd(ctx, cfg, args, stdout)
	case "validate":
		return validateCmd(cfg, args, stdout)
	case "signup":
		return signupCmd(ctx, cfg, args, stdout)
	case "serve":
		return serveCmd(ctx, cfg, args)
	case "help":
		usage(stdout)
		return nil
	default:
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: menuseed [command] [flags]

Commands:
  seed      wipe the collections and the bucket, then insert the dataset (default)
  validate  check the dataset without touching any backend
  signup    create a user account
  serve     run the local backend over HTTP

Run "menuseed <command> -h" for the flags of a command.
`)
}

// loadDataset returns the dataset at path, or the embedded one when path is
// empty.
func loadDataset(path string) (*dataset.Dataset, error) {
	if path == "" {
		return dataset.Default()
	}
	return dataset.Load(path)
}

func newHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

// errUsage reports a flag error that the flag package has already printed.
var errUsage = errors.New("invalid arguments")
