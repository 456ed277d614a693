package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/config"
	"github.com/johnwards/menuseed/internal/database"
	"github.com/johnwards/menuseed/internal/mongostore"
	"github.com/johnwards/menuseed/internal/s3store"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/supabase"
)

// backends holds the clients selected by configuration.
type backends struct {
	docs      backend.DocumentStore
	files     backend.ObjectStore
	registrar backend.Registrar

	// local is set when any part runs on the SQLite backend.
	local *store.Store

	closers []func(context.Context) error
}

// openBackends builds the document store, the object store and, where the
// backend supports it, the registrar.
func openBackends(ctx context.Context, cfg config.Config, httpClient *http.Client) (*backends, error) {
	b := &backends{}

	var sb *supabase.Client
	if cfg.Backend == config.BackendSupabase || cfg.Storage == config.BackendSupabase {
		c, err := supabase.New(supabase.Config{
			URL:        cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("supabase client: %w", err)
		}
		sb = c
	}

	if cfg.Backend == config.BackendSQLite || cfg.Storage == config.BackendSQLite {
		db, err := database.OpenMigrated(ctx, cfg.DBPath)
		if err != nil {
			_ = b.Close(ctx)
			return nil, fmt.Errorf("open database: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		b.local = store.New(db, cfg.PublicURL)
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		b.docs = b.local.Documents
		b.registrar = b.local.Users
	case config.BackendSupabase:
		b.docs = sb.Documents()
		b.registrar = sb.Auth()
	case config.BackendMongo:
		m, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.HTTPTimeout)
		if err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.closers = append(b.closers, m.Close)
		b.docs = m
	default:
		_ = b.Close(ctx)
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	switch cfg.Storage {
	case config.BackendSQLite:
		b.files = b.local.Files
	case config.BackendSupabase:
		b.files = sb.Storage()
	case config.BackendS3:
		s, err := s3store.New(ctx, s3store.Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.S3PublicURL,
			PublicRead:      cfg.S3PublicRead,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.files = s
	default:
		_ = b.Close(ctx)
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	slog.Debug("backends ready", "backend", cfg.Backend, "storage", cfg.Storage)
	return b, nil
}

// Close releases every client in reverse order of creation.
func (b *backends) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	b.closers = nil
	return errors.Join(errs...)
}
