package documents

import (
	"net/http"

	"github.com/johnwards/menuseed/internal/backend"
)

// RegisterRoutes adds the document endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, docs backend.DocumentStore) {
	h := &Handler{docs: docs}

	base := "/v1/databases/{databaseId}/collections/{collectionId}/documents"
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("DELETE "+base+"/{documentId}", h.Delete)
}
