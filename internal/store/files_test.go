package store_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

var _ backend.ObjectStore = (*store.SQLiteFileStore)(nil)

func setupFileStore(t *testing.T) *store.SQLiteFileStore {
	t.Helper()
	return store.NewSQLiteFileStore(testhelpers.NewMigratedDB(t), "http://localhost:8080")
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestCreateFileFromURI(t *testing.T) {
	s := setupFileStore(t)
	ctx := context.Background()
	path := writeTempFile(t, "burger.png", testhelpers.PNG)

	f, err := s.CreateFile(ctx, "assets", "file-1", domain.FileInput{
		Name:     "burger.png",
		MimeType: "image/png",
		LocalURI: domain.FileURI(path),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Size != int64(len(testhelpers.PNG)) {
		t.Errorf("size = %d, want %d", f.Size, len(testhelpers.PNG))
	}

	got, content, err := s.Content(ctx, "assets", "file-1")
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !bytes.Equal(content, testhelpers.PNG) {
		t.Error("stored content does not match uploaded file")
	}
	if got.MimeType != "image/png" || got.Name != "burger.png" {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestCreateFileDefaultsMimeType(t *testing.T) {
	s := setupFileStore(t)
	path := writeTempFile(t, "blob", []byte("x"))

	f, err := s.CreateFile(context.Background(), "assets", "f", domain.FileInput{Name: "blob", LocalURI: path})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.MimeType != "application/octet-stream" {
		t.Errorf("MimeType = %q, want application/octet-stream", f.MimeType)
	}
}

func TestCreateFileMissingLocalFile(t *testing.T) {
	s := setupFileStore(t)

	_, err := s.CreateFile(context.Background(), "assets", "f", domain.FileInput{
		Name:     "gone.png",
		LocalURI: filepath.Join(t.TempDir(), "gone.png"),
	})
	if err == nil {
		t.Fatal("expected error for missing local file")
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	s := setupFileStore(t)
	ctx := context.Background()
	path := writeTempFile(t, "a.png", testhelpers.PNG)

	for _, id := range []string{"f1", "f2"} {
		if _, err := s.CreateFile(ctx, "assets", id, domain.FileInput{Name: "a.png", LocalURI: path}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	if _, err := s.CreateFile(ctx, "other", "f3", domain.FileInput{Name: "a.png", LocalURI: path}); err != nil {
		t.Fatalf("create f3: %v", err)
	}

	files, err := s.ListFiles(ctx, "assets")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0].ID != "f1" || files[1].ID != "f2" {
		t.Fatalf("unexpected files: %+v", files)
	}

	if err := s.DeleteFile(ctx, "assets", "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteFile(ctx, "assets", "f1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	files, err = s.ListFiles(ctx, "assets")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file after delete, got %d", len(files))
	}
}

func TestDuplicateFileID(t *testing.T) {
	s := setupFileStore(t)
	ctx := context.Background()
	path := writeTempFile(t, "a.png", testhelpers.PNG)

	if _, err := s.CreateFile(ctx, "assets", "dup", domain.FileInput{Name: "a.png", LocalURI: path}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateFile(ctx, "assets", "dup", domain.FileInput{Name: "a.png", LocalURI: path}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestFileViewURL(t *testing.T) {
	s := setupFileStore(t)

	got, err := s.FileViewURL("assets", "file-1")
	if err != nil {
		t.Fatalf("view url: %v", err)
	}
	want := "http://localhost:8080/v1/storage/buckets/assets/files/file-1/view"
	if got != want {
		t.Errorf("FileViewURL = %q, want %q", got, want)
	}
}
