// Package config loads settings from the environment, after an optional
// dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by MENUSEED_BACKEND and MENUSEED_STORAGE.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
	BackendS3       = "s3"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Backend   string // MENUSEED_BACKEND, default "sqlite"
	Storage   string // MENUSEED_STORAGE, defaults to Backend when it has storage
	DBPath    string // MENUSEED_DB, default "menuseed.db"
	PublicURL string // MENUSEED_PUBLIC_URL, default "http://localhost:8080"

	SupabaseURL string // MENUSEED_SUPABASE_URL
	SupabaseKey string // MENUSEED_SUPABASE_KEY
	MongoURI    string // MENUSEED_MONGO_URI

	S3Region          string // MENUSEED_S3_REGION
	S3Endpoint        string // MENUSEED_S3_ENDPOINT
	S3PublicURL       string // MENUSEED_S3_PUBLIC_URL
	S3PublicRead      bool   // MENUSEED_S3_PUBLIC_READ
	S3AccessKeyID     string // MENUSEED_S3_ACCESS_KEY_ID
	S3SecretAccessKey string // MENUSEED_S3_SECRET_ACCESS_KEY

	DatabaseID                   string // MENUSEED_DATABASE_ID, default "menuseed"
	CategoriesCollection         string // MENUSEED_CATEGORIES_COLLECTION
	CustomizationsCollection     string // MENUSEED_CUSTOMIZATIONS_COLLECTION
	MenuCollection               string // MENUSEED_MENU_COLLECTION
	MenuCustomizationsCollection string // MENUSEED_MENU_CUSTOMIZATIONS_COLLECTION
	Bucket                       string // MENUSEED_BUCKET, default "assets"

	DataPath          string        // MENUSEED_DATA, empty means the embedded dataset
	CacheDir          string        // MENUSEED_CACHE_DIR
	DeleteConcurrency int           // MENUSEED_DELETE_CONCURRENCY, default 8
	RateLimit         float64       // MENUSEED_RATE_LIMIT, requests per second, 0 disables
	StrictClear       bool          // MENUSEED_STRICT_CLEAR
	HTTPTimeout       time.Duration // MENUSEED_HTTP_TIMEOUT, default 30s

	MetricsFile string     // MENUSEED_METRICS_FILE, optional
	LogLevel    slog.Level // MENUSEED_LOG_LEVEL, default info

	Addr   string // MENUSEED_ADDR, default ":8080"
	APIKey string // MENUSEED_API_KEY, optional
}

// Load reads the dotenv file named by MENUSEED_ENV_FILE (default ".env"),
// if present, then reads configuration from environment variables with
// sensible defaults. Variables already set take precedence over the file.
func Load() (Config, error) {
	envFile := envOr("MENUSEED_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var p parser
	cfg := Config{
		Backend:   envOr("MENUSEED_BACKEND", BackendSQLite),
		Storage:   os.Getenv("MENUSEED_STORAGE"),
		DBPath:    envOr("MENUSEED_DB", "menuseed.db"),
		PublicURL: envOr("MENUSEED_PUBLIC_URL", "http://localhost:8080"),

		SupabaseURL: os.Getenv("MENUSEED_SUPABASE_URL"),
		SupabaseKey: os.Getenv("MENUSEED_SUPABASE_KEY"),
		MongoURI:    os.Getenv("MENUSEED_MONGO_URI"),

		S3Region:          os.Getenv("MENUSEED_S3_REGION"),
		S3Endpoint:        os.Getenv("MENUSEED_S3_ENDPOINT"),
		S3PublicURL:       os.Getenv("MENUSEED_S3_PUBLIC_URL"),
		S3PublicRead:      p.boolVar("MENUSEED_S3_PUBLIC_READ", false),
		S3AccessKeyID:     os.Getenv("MENUSEED_S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("MENUSEED_S3_SECRET_ACCESS_KEY"),

		DatabaseID:                   envOr("MENUSEED_DATABASE_ID", "menuseed"),
		CategoriesCollection:         envOr("MENUSEED_CATEGORIES_COLLECTION", "categories"),
		CustomizationsCollection:     envOr("MENUSEED_CUSTOMIZATIONS_COLLECTION", "customizations"),
		MenuCollection:               envOr("MENUSEED_MENU_COLLECTION", "menu"),
		MenuCustomizationsCollection: envOr("MENUSEED_MENU_CUSTOMIZATIONS_COLLECTION", "menu_customizations"),
		Bucket:                       envOr("MENUSEED_BUCKET", "assets"),

		DataPath:          os.Getenv("MENUSEED_DATA"),
		CacheDir:          envOr("MENUSEED_CACHE_DIR", filepath.Join(os.TempDir(), "menuseed-cache")),
		DeleteConcurrency: p.intVar("MENUSEED_DELETE_CONCURRENCY", 8),
		RateLimit:         p.floatVar("MENUSEED_RATE_LIMIT", 0),
		StrictClear:       p.boolVar("MENUSEED_STRICT_CLEAR", false),
		HTTPTimeout:       p.durationVar("MENUSEED_HTTP_TIMEOUT", 30*time.Second),

		MetricsFile: os.Getenv("MENUSEED_METRICS_FILE"),
		LogLevel:    p.levelVar("MENUSEED_LOG_LEVEL", slog.LevelInfo),

		Addr:   envOr("MENUSEED_ADDR", ":8080"),
		APIKey: os.Getenv("MENUSEED_API_KEY"),
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}

	if cfg.Storage == "" && (cfg.Backend == BackendSQLite || cfg.Backend == BackendSupabase) {
		cfg.Storage = cfg.Backend
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendSQLite, BackendSupabase, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("MENUSEED_BACKEND: unknown backend %q", c.Backend))
	}
	switch c.Storage {
	case BackendSQLite, BackendSupabase, BackendS3:
	case "":
		errs = append(errs, fmt.Errorf("MENUSEED_STORAGE is required when MENUSEED_BACKEND=%s", c.Backend))
	default:
		errs = append(errs, fmt.Errorf("MENUSEED_STORAGE: unknown storage %q", c.Storage))
	}

	if c.uses(BackendSupabase) {
		if c.SupabaseURL == "" {
			errs = append(errs, errors.New("MENUSEED_SUPABASE_URL is required for supabase"))
		}
		if c.SupabaseKey == "" {
			errs = append(errs, errors.New("MENUSEED_SUPABASE_KEY is required for supabase"))
		}
	}
	if c.Backend == BackendMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MENUSEED_MONGO_URI is required for mongo"))
	}
	if c.Storage == BackendS3 && c.S3Region == "" {
		errs = append(errs, errors.New("MENUSEED_S3_REGION is required for s3"))
	}

	if c.DeleteConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MENUSEED_DELETE_CONCURRENCY must be at least 1, got %d", c.DeleteConcurrency))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("MENUSEED_RATE_LIMIT must not be negative, got %g", c.RateLimit))
	}
	return errors.Join(errs...)
}

func (c Config) uses(backend string) bool {
	return c.Backend == backend || c.Storage == backend
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser reads typed variables and collects every parse error.
type parser struct {
	errs []error
}

func (p *parser) fail(key, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: %w", key, v, err))
}

func (p *parser) intVar(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return n
}

func (p *parser) floatVar(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return f
}

func (p *parser) boolVar(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return b
}

func (p *parser) durationVar(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return d
}

func (p *parser) levelVar(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		p.fail(key, v, err)
		return fallback
	}
	return l
}
