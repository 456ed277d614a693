package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnwards/menuseed/internal/account"
	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/accounts"
	"github.com/johnwards/menuseed/internal/api/admin"
	"github.com/johnwards/menuseed/internal/api/documents"
	"github.com/johnwards/menuseed/internal/api/storage"
	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/dataset"
)

const shutdownTimeout = 10 * time.Second

// newMux registers every endpoint the configured backends support.
func newMux(cfg config.Config, b *backends, reg *prometheus.Registry, dataPath string) *http.ServeMux {
	mux := http.NewServeMux()

	documents.RegisterRoutes(mux, b.docs)
	if b.local != nil && cfg.Storage == config.BackendSQLite {
		storage.RegisterRoutes(mux, b.local.Files, b.local.Files)
	}
	if b.registrar != nil {
		accounts.RegisterRoutes(mux, account.NewService(b.registrar, slog.Default()))
	}

	admin.RegisterRoutes(mux, newSeeder(cfg, b, reg), func() (*dataset.Dataset, error) {
		return loadDataset(dataPath)
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", api.NotFound)
	return mux
}

func serveCmd(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Addr, "listen address")
	dataPath := fs.String("data", cfg.DataPath, "dataset used by the seed endpoint")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	b, err := openBackends(ctx, cfg, newHTTPClient(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = b.Close(context.WithoutCancel(ctx)) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	logger := slog.Default()
	handler := api.Chain(newMux(cfg, b, reg, *dataPath),
		api.Recovery(logger),
		api.RequestID(),
		api.Auth(cfg.APIKey),
		api.Logging(logger),
	)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting menuseed server", "addr", *addr, "backend", cfg.Backend, "storage", cfg.Storage)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	// Wait for in-flight requests before the backends are closed.
	<-idle
	return nil
}
