package testhelpers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnwards/menuseed/internal/database"
)

// NewTestDB returns an in-memory SQLite database configured the same way as
// production. The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewMigratedDB returns an in-memory database with all migrations applied.
func NewMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenMigrated(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open migrated test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// PNG is a tiny payload served as image content by NewImageServer.
var PNG = []byte("\x89PNG\r\n\x1a\nmenuseed")

// NewImageServer serves PNG for any path ending in an image extension and
// 404 for everything else. The server is closed when the test completes.
func NewImageServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ".png"), strings.HasSuffix(r.URL.Path, ".jpg"):
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(PNG)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
