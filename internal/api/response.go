package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/johnwards/menuseed/internal/domain"
)

// WriteJSON marshals v as JSON and writes it to w with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// DocumentResponse is a document as returned by the documents endpoints.
// The stored fields sit next to the metadata keys.
type DocumentResponse struct {
	ID           string
	CollectionID string
	CreatedAt    string
	Data         json.RawMessage
}

// NewDocumentResponse converts a stored document.
func NewDocumentResponse(d domain.Document) DocumentResponse {
	return DocumentResponse{ID: d.ID, CollectionID: d.CollectionID, CreatedAt: d.CreatedAt, Data: d.Data}
}

// MarshalJSON flattens the document fields into the top-level object.
func (d DocumentResponse) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if len(d.Data) > 0 {
		if err := json.Unmarshal(d.Data, &out); err != nil {
			return nil, err
		}
	}
	out["$id"] = d.ID
	out["$collectionId"] = d.CollectionID
	out["$createdAt"] = d.CreatedAt
	return json.Marshal(out)
}

// DocumentList is the response of a list documents call.
type DocumentList struct {
	Total     int                `json:"total"`
	Documents []DocumentResponse `json:"documents"`
}

// FileResponse is a file as returned by the storage endpoints.
type FileResponse struct {
	ID        string `json:"$id"`
	BucketID  string `json:"bucketId"`
	CreatedAt string `json:"$createdAt"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"sizeOriginal"`
}

// NewFileResponse converts a stored file.
func NewFileResponse(f domain.File) FileResponse {
	return FileResponse{
		ID:        f.ID,
		BucketID:  f.BucketID,
		CreatedAt: f.CreatedAt,
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size,
	}
}

// FileList is the response of a list files call.
type FileList struct {
	Total int            `json:"total"`
	Files []FileResponse `json:"files"`
}
