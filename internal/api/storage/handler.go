package storage

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
)

// ContentReader returns the bytes of a stored file.
type ContentReader interface {
	Content(ctx context.Context, bucketID, fileID string) (domain.File, []byte, error)
}

// Handler serves the storage API.
type Handler struct {
	files   backend.ObjectStore
	content ContentReader
}

// List handles GET /v1/storage/buckets/{bucketId}/files.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.ListFiles(r.Context(), r.PathValue("bucketId"))
	if err != nil {
		api.WriteStoreError(w, r, err, api.TypeFileNotFound)
		return
	}

	out := api.FileList{Total: len(files), Files: make([]api.FileResponse, 0, len(files))}
	for _, f := range files {
		out.Files = append(out.Files, api.NewFileResponse(f))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /v1/storage/buckets/{bucketId}/files/{fileId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.files.DeleteFile(r.Context(), r.PathValue("bucketId"), r.PathValue("fileId")); err != nil {
		api.WriteStoreError(w, r, err, api.TypeFileNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// View handles GET /v1/storage/buckets/{bucketId}/files/{fileId}/view and
// serves the raw file content.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	f, content, err := h.content.Content(r.Context(), r.PathValue("bucketId"), r.PathValue("fileId"))
	if err != nil {
		api.WriteStoreError(w, r, err, api.TypeFileNotFound)
		return
	}

	modTime, _ := time.Parse(time.RFC3339Nano, f.CreatedAt)
	w.Header().Set("Content-Type", f.MimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, f.Name, modTime, bytes.NewReader(content))
}
