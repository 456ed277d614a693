package documents

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/backend"
)

// uniqueID asks the server to generate the document ID.
const uniqueID = "unique()"

// Handler serves the documents API.
type Handler struct {
	docs backend.DocumentStore
}

type createRequest struct {
	DocumentID string          `json:"documentId"`
	Data       json.RawMessage `json:"data"`
}

// List handles GET /v1/databases/{databaseId}/collections/{collectionId}/documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListDocuments(r.Context(), r.PathValue("databaseId"), r.PathValue("collectionId"))
	if err != nil {
		api.WriteStoreError(w, r, err, api.TypeDocumentNotFound)
		return
	}

	out := api.DocumentList{Total: len(docs), Documents: make([]api.DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, api.NewDocumentResponse(d))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

// Create handles POST /v1/databases/{databaseId}/collections/{collectionId}/documents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, api.NewValidationError("Invalid request body: "+err.Error(), corrID))
		return
	}
	if len(req.Data) == 0 {
		api.WriteError(w, api.NewValidationError("Param \"data\" is not optional.", corrID))
		return
	}

	id := req.DocumentID
	if id == "" || id == uniqueID {
		id = uuid.NewString()
	}

	doc, err := h.docs.CreateDocument(r.Context(), r.PathValue("databaseId"), r.PathValue("collectionId"), id, req.Data)
	if err != nil {
		api.WriteStoreError(w, r, err, api.TypeDocumentNotFound)
		return
	}
	api.WriteJSON(w, http.StatusCreated, api.NewDocumentResponse(doc))
}

// Delete handles DELETE .../documents/{documentId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.docs.DeleteDocument(r.Context(),
		r.PathValue("databaseId"), r.PathValue("collectionId"), r.PathValue("documentId"))
	if err != nil {
		api.WriteStoreError(w, r, err, api.TypeDocumentNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
