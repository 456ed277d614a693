package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/johnwards/menuseed/internal/domain"
)

// SQLiteDocumentStore implements backend.DocumentStore backed by SQLite.
// Documents are kept as JSON text and listed in insertion order.
type SQLiteDocumentStore struct {
	db *sql.DB
}

// NewSQLiteDocumentStore creates a new SQLiteDocumentStore.
func NewSQLiteDocumentStore(db *sql.DB) *SQLiteDocumentStore {
	return &SQLiteDocumentStore{db: db}
}

// ListDocuments returns every document in a collection.
func (s *SQLiteDocumentStore) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at FROM documents
		 WHERE database_id = ? AND collection_id = ?
		 ORDER BY seq ASC`,
		databaseID, collectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var data string
		if err := rows.Scan(&doc.ID, &data, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CollectionID = collectionID
		doc.Data = json.RawMessage(data)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return docs, nil
}

// GetDocument retrieves a single document by ID.
func (s *SQLiteDocumentStore) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (domain.Document, error) {
	doc := domain.Document{ID: documentID, CollectionID: collectionID}
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at FROM documents WHERE database_id = ? AND collection_id = ? AND id = ?`,
		databaseID, collectionID, documentID,
	).Scan(&data, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Document{}, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document %s: %w", documentID, err)
	}
	doc.Data = json.RawMessage(data)
	return doc, nil
}

// CreateDocument inserts fields as a new document. An empty documentID gets
// a generated UUID.
func (s *SQLiteDocumentStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, fields any) (domain.Document, error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	data, err := encodeFields(fields)
	if err != nil {
		return domain.Document{}, err
	}

	ts := now()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (database_id, collection_id, id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		databaseID, collectionID, documentID, string(data), ts, ts,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.Document{}, fmt.Errorf("document %q already exists: %w", documentID, domain.ErrConflict)
		}
		return domain.Document{}, fmt.Errorf("insert document: %w", err)
	}

	return domain.Document{
		ID:           documentID,
		CollectionID: collectionID,
		Data:         data,
		CreatedAt:    ts,
	}, nil
}

// DeleteDocument removes a document. Deleting a missing document returns
// domain.ErrNotFound.
func (s *SQLiteDocumentStore) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE database_id = ? AND collection_id = ? AND id = ?`,
		databaseID, collectionID, documentID,
	)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return nil
}

// encodeFields marshals fields and checks that the result is a JSON object.
func encodeFields(fields any) (json.RawMessage, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document fields: %v: %w", err, domain.ErrInvalidDocument)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("document fields must encode to a JSON object: %w", domain.ErrInvalidDocument)
	}
	return data, nil
}
