package storage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/storage"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

const filesPath = "/v1/storage/buckets/assets/files"

func setupServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	db := testhelpers.NewMigratedDB(t)

	s := store.New(db, "http://localhost")
	mux := http.NewServeMux()
	storage.RegisterRoutes(mux, s.Files, s.Files)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID(), api.Auth("secret")))
	t.Cleanup(srv.Close)
	return srv, s
}

func uploadImage(t *testing.T, s *store.Store, fileID string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "burger.png")
	if err := os.WriteFile(path, testhelpers.PNG, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := s.Files.CreateFile(context.Background(), "assets", fileID, domain.FileInput{
		Name:     "burger.png",
		MimeType: "image/png",
		LocalURI: domain.FileURI(path),
	})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
}

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("X-Api-Key", "secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestListFiles(t *testing.T) {
	srv, s := setupServer(t)
	uploadImage(t, s, "file-1")
	uploadImage(t, s, "file-2")

	resp := do(t, http.MethodGet, srv.URL+filesPath)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result api.FileList
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 files, got %d", result.Total)
	}
	if result.Files[0].ID != "file-1" || result.Files[0].MimeType != "image/png" {
		t.Errorf("unexpected first file: %+v", result.Files[0])
	}
	if result.Files[0].Size != int64(len(testhelpers.PNG)) {
		t.Errorf("size = %d, want %d", result.Files[0].Size, len(testhelpers.PNG))
	}
}

func TestListFilesRequiresAPIKey(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + filesPath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestViewFile(t *testing.T) {
	srv, s := setupServer(t)
	uploadImage(t, s, "file-1")

	// View URLs are public.
	resp, err := http.Get(srv.URL + filesPath + "/file-1/view")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(body, testhelpers.PNG) {
		t.Errorf("body = %q, want %q", body, testhelpers.PNG)
	}
}

func TestViewMissingFile(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + filesPath + "/nope/view")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var apiErr api.Error
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Type != api.TypeFileNotFound {
		t.Errorf("type = %q, want %q", apiErr.Type, api.TypeFileNotFound)
	}
}

func TestDeleteFile(t *testing.T) {
	srv, s := setupServer(t)
	uploadImage(t, s, "file-1")

	resp := do(t, http.MethodDelete, srv.URL+filesPath+"/file-1")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodDelete, srv.URL+filesPath+"/file-1")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", resp.StatusCode)
	}
}
