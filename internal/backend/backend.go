// Package backend defines the remote collaborators the seeder and the
// sign-up flow talk to. Concrete implementations live in the store,
// supabase, mongostore and s3store packages.
package backend

import (
	"context"

	"github.com/johnwards/menuseed/internal/domain"
)

// DocumentStore is a database of collections holding JSON documents.
// DeleteDocument returns an error wrapping domain.ErrNotFound when the
// document does not exist.
type DocumentStore interface {
	ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error)
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, fields any) (domain.Document, error)
	DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error
}

// ObjectStore is a bucketed blob store. DeleteFile returns an error wrapping
// domain.ErrNotFound when the file does not exist.
type ObjectStore interface {
	ListFiles(ctx context.Context, bucketID string) ([]domain.File, error)
	CreateFile(ctx context.Context, bucketID, fileID string, in domain.FileInput) (domain.File, error)
	DeleteFile(ctx context.Context, bucketID, fileID string) error
	FileViewURL(bucketID, fileID string) (string, error)
}

// Registrar creates user accounts. Registering an email twice returns an
// error wrapping domain.ErrConflict.
type Registrar interface {
	CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error)
}
