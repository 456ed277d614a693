package storage

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/backend"
)

// RegisterRoutes adds the file endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, files backend.ObjectStore, content ContentReader) {
	h := &Handler{files: files, content: content}

	base := "/v1/storage/buckets/{bucketId}/files"
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("DELETE "+base+"/{fileId}", h.Delete)
	mux.HandleFunc("GET "+base+"/{fileId}/view", h.View)
}
