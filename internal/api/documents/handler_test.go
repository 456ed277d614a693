package documents_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/johnwards/menuseed/internal/api"
	"github.com/johnwards/menuseed/internal/api/documents"
	"github.com/johnwards/menuseed/internal/store"
	"github.com/johnwards/menuseed/internal/testhelpers"
)

const collectionPath = "/v1/databases/menu-db/collections/categories/documents"

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testhelpers.NewMigratedDB(t)

	s := store.New(db, "http://localhost")
	mux := http.NewServeMux()
	documents.RegisterRoutes(mux, s.Documents)

	srv := httptest.NewServer(api.Chain(mux, api.RequestID()))
	t.Cleanup(srv.Close)
	return srv
}

func createDocument(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+collectionPath, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func TestCreateAndListDocuments(t *testing.T) {
	srv := setupServer(t)

	resp := createDocument(t, srv, `{"documentId":"cat-1","data":{"name":"Burgers","description":"Grilled"}}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created["$id"] != "cat-1" || created["name"] != "Burgers" {
		t.Errorf("unexpected document: %v", created)
	}

	list, err := http.Get(srv.URL + collectionPath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = list.Body.Close() }()

	var result struct {
		Total     int              `json:"total"`
		Documents []map[string]any `json:"documents"`
	}
	if err := json.NewDecoder(list.Body).Decode(&result); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if result.Total != 1 || len(result.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", result.Total)
	}
	if result.Documents[0]["$collectionId"] != "categories" {
		t.Errorf("$collectionId = %v, want categories", result.Documents[0]["$collectionId"])
	}
}

func TestCreateDocumentGeneratesID(t *testing.T) {
	srv := setupServer(t)

	resp := createDocument(t, srv, `{"documentId":"unique()","data":{"name":"Pizzas"}}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, _ := created["$id"].(string)
	if id == "" || id == "unique()" {
		t.Errorf("expected a generated ID, got %q", id)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"data":`},
		{"missing data", `{"documentId":"x"}`},
		{"data not an object", `{"documentId":"x","data":[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := createDocument(t, srv, tt.body)
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			var apiErr api.Error
			if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if apiErr.Type != api.TypeArgumentInvalid {
				t.Errorf("type = %q, want %q", apiErr.Type, api.TypeArgumentInvalid)
			}
		})
	}
}

func TestCreateDuplicateDocument(t *testing.T) {
	srv := setupServer(t)

	first := createDocument(t, srv, `{"documentId":"cat-1","data":{"name":"Burgers"}}`)
	_ = first.Body.Close()

	resp := createDocument(t, srv, `{"documentId":"cat-1","data":{"name":"Again"}}`)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestDeleteDocument(t *testing.T) {
	srv := setupServer(t)

	created := createDocument(t, srv, `{"documentId":"cat-1","data":{"name":"Burgers"}}`)
	_ = created.Body.Close()

	del := func() int {
		req, _ := http.NewRequest(http.MethodDelete, srv.URL+collectionPath+"/cat-1", http.NoBody)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	if code := del(); code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", code)
	}
	if code := del(); code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", code)
	}
}
