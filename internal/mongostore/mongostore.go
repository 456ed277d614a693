// Package mongostore implements the document store on MongoDB. A database ID
// names a Mongo database and a collection ID a collection in it. Document IDs
// are stored as string _id values.
package mongostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johnwards/menuseed/internal/domain"
)

// Store is a DocumentStore backed by a Mongo client.
type Store struct {
	client *mongo.Client
}

// New wraps an already connected client.
func New(client *mongo.Client) *Store {
	return &Store{client: client}
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*Store, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client), nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(databaseID, collectionID string) *mongo.Collection {
	return s.client.Database(databaseID).Collection(collectionID)
}

// ListDocuments returns every document in the collection.
func (s *Store) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	cur, err := s.collection(databaseID, collectionID).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collectionID, err)
	}
	defer cur.Close(ctx)

	docs := []domain.Document{}
	for cur.Next(ctx) {
		doc, err := fromRaw(cur.Current, collectionID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collectionID, err)
	}
	return docs, nil
}

// CreateDocument inserts fields under documentID, generating one when empty.
func (s *Store) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, fields any) (domain.Document, error) {
	if documentID == "" {
		documentID = uuid.NewString()
	}

	m, err := toBSON(fields)
	if err != nil {
		return domain.Document{}, err
	}
	m["_id"] = documentID

	if _, err := s.collection(databaseID, collectionID).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Document{}, fmt.Errorf("document %s/%s: %w", collectionID, documentID, domain.ErrConflict)
		}
		return domain.Document{}, fmt.Errorf("insert into %s: %w", collectionID, err)
	}

	raw, err := bson.Marshal(m)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode document: %w", err)
	}
	return fromRaw(raw, collectionID)
}

// DeleteDocument deletes one document. Deleting nothing returns
// domain.ErrNotFound.
func (s *Store) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	res, err := s.collection(databaseID, collectionID).DeleteOne(ctx, bson.D{{Key: "_id", Value: documentID}})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collectionID, documentID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("document %s/%s: %w", collectionID, documentID, domain.ErrNotFound)
	}
	return nil
}

// toBSON converts fields to a BSON map by way of their JSON encoding, so the
// stored shape follows the json tags of domain types.
func toBSON(fields any) (bson.M, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var m bson.M
	if err := bson.UnmarshalExtJSON(data, false, &m); err != nil || m == nil {
		return nil, fmt.Errorf("fields must encode to a JSON object: %w", domain.ErrInvalidDocument)
	}
	return m, nil
}

// fromRaw turns a stored document back into a domain.Document. The _id key
// is removed from Data.
func fromRaw(raw bson.Raw, collectionID string) (domain.Document, error) {
	id, ok := raw.Lookup("_id").StringValueOK()
	if !ok {
		return domain.Document{}, fmt.Errorf("document in %s has a non-string _id: %w", collectionID, domain.ErrInvalidDocument)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return domain.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	delete(m, "_id")

	data, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return domain.Document{}, fmt.Errorf("encode document %s: %w", id, err)
	}
	return domain.Document{ID: id, CollectionID: collectionID, Data: json.RawMessage(data)}, nil
}
