package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/johnwards/menuseed/internal/domain"
)

// DocumentStore keeps documents as rows in PostgREST tables.
type DocumentStore struct {
	client *Client
}

// Documents returns a DocumentStore backed by c.
func (c *Client) Documents() *DocumentStore {
	return &DocumentStore{client: c}
}

func (s *DocumentStore) tableURL(collectionID string, params url.Values) string {
	u := s.client.baseURL + "/rest/v1/" + url.PathEscape(collectionID)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func setProfile(req *http.Request, databaseID string) {
	if databaseID == "" {
		return
	}
	req.Header.Set("Accept-Profile", databaseID)
	req.Header.Set("Content-Profile", databaseID)
}

// ListDocuments returns every row of the table, paging through it by id.
func (s *DocumentStore) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	var docs []domain.Document
	for offset := 0; ; offset += s.client.pageSize {
		params := url.Values{}
		params.Set("select", "*")
		params.Set("order", "id.asc")
		params.Set("limit", strconv.Itoa(s.client.pageSize))
		if offset > 0 {
			params.Set("offset", strconv.Itoa(offset))
		}

		req, err := s.client.newRequest(ctx, http.MethodGet, s.tableURL(collectionID, params), nil)
		if err != nil {
			return nil, err
		}
		setProfile(req, databaseID)

		resp, err := s.client.send(req)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collectionID, err)
		}
		page, err := decodeRows(resp, collectionID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, page...)
		if len(page) < s.client.pageSize {
			return docs, nil
		}
	}
}

// CreateDocument inserts fields as a new row with the given id.
func (s *DocumentStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, fields any) (domain.Document, error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	row, err := rowWithID(fields, documentID)
	if err != nil {
		return domain.Document{}, err
	}

	req, err := s.client.newRequest(ctx, http.MethodPost, s.tableURL(collectionID, nil), row)
	if err != nil {
		return domain.Document{}, err
	}
	setProfile(req, databaseID)
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.send(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("insert into %s: %w", collectionID, err)
	}
	docs, err := decodeRows(resp, collectionID)
	if err != nil {
		return domain.Document{}, err
	}
	if len(docs) != 1 {
		return domain.Document{}, fmt.Errorf("insert into %s: expected 1 row, got %d", collectionID, len(docs))
	}
	return docs[0], nil
}

// DeleteDocument deletes the row with the given id. A delete that matches
// no row returns domain.ErrNotFound.
func (s *DocumentStore) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	params := url.Values{}
	params.Set("id", "eq."+documentID)

	req, err := s.client.newRequest(ctx, http.MethodDelete, s.tableURL(collectionID, params), nil)
	if err != nil {
		return err
	}
	setProfile(req, databaseID)
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.send(req)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collectionID, documentID, err)
	}
	docs, err := decodeRows(resp, collectionID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("document %s/%s: %w", collectionID, documentID, domain.ErrNotFound)
	}
	return nil
}

// rowWithID encodes fields as a JSON object and sets its id column.
func rowWithID(fields any, id string) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var row map[string]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil || row == nil {
		return nil, fmt.Errorf("fields must encode to a JSON object: %w", domain.ErrInvalidDocument)
	}
	idJSON, _ := json.Marshal(id)
	row["id"] = idJSON
	return row, nil
}

func decodeRows(resp *Response, collectionID string) ([]domain.Document, error) {
	var rows []json.RawMessage
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", collectionID, err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for _, raw := range rows {
		var meta struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", collectionID, err)
		}
		docs = append(docs, domain.Document{
			ID:           meta.ID,
			CollectionID: collectionID,
			Data:         raw,
			CreatedAt:    meta.CreatedAt,
		})
	}
	return docs, nil
}
