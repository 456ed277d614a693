package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/fetch"
)

const tracerName = "github.com/johnwards/menuseed/internal/seed"

// DefaultDeleteConcurrency bounds the number of deletes in flight during a clear.
const DefaultDeleteConcurrency = 8

// Collections names the four collections the seeder owns.
type Collections struct {
	Categories         string
	Customizations     string
	Menu               string
	MenuCustomizations string
}

// Config identifies the seeding targets. All identifiers are opaque to the
// seeder.
type Config struct {
	DatabaseID        string
	Collections       Collections
	BucketID          string
	CacheDir          string
	DeleteConcurrency int
	// StrictClear makes a clear fail when a delete fails for any reason
	// other than the target being gone already.
	StrictClear bool
}

// Fetcher downloads source images into the local cache.
type Fetcher interface {
	DownloadToCache(ctx context.Context, remoteURL, localPath string) (fetch.Download, error)
	Stat(localURI string) (fetch.FileInfo, error)
}

// Seeder wipes and repopulates the menu collections and the image bucket.
type Seeder struct {
	docs    backend.DocumentStore
	files   backend.ObjectStore
	fetcher Fetcher
	cfg     Config

	logger  *slog.Logger
	limiter *rate.Limiter
	metrics *Metrics
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Seeder) { s.logger = l }
}

// WithLimiter throttles every remote store call through l.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Seeder) { s.limiter = l }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Seeder) { s.metrics = m }
}

// WithTracerProvider sets the tracer provider. The default is the global one.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Seeder) { s.tracer = tp.Tracer(tracerName) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// WithIDGenerator replaces the generator for new document and file IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Seeder) { s.newID = newID }
}

// New creates a Seeder.
func New(docs backend.DocumentStore, files backend.ObjectStore, fetcher Fetcher, cfg Config, opts ...Option) *Seeder {
	if cfg.DeleteConcurrency <= 0 {
		cfg.DeleteConcurrency = DefaultDeleteConcurrency
	}
	s := &Seeder{
		docs:    docs,
		files:   files,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  otel.GetTracerProvider().Tracer(tracerName),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wait blocks until the limiter admits another remote call.
func (s *Seeder) wait(ctx context.Context) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	return s.limiter.Wait(ctx)
}

// createDocument inserts fields under a fresh ID.
func (s *Seeder) createDocument(ctx context.Context, collectionID string, fields any) (domain.Document, error) {
	if err := s.wait(ctx); err != nil {
		return domain.Document{}, err
	}
	doc, err := s.docs.CreateDocument(ctx, s.cfg.DatabaseID, collectionID, s.newID(), fields)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document in %s: %w", collectionID, err)
	}
	s.metrics.documentCreated(collectionID)
	return doc, nil
}

func (s *Seeder) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
