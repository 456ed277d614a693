package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Document is a record as returned by a document store. Data holds the JSON
// encoding of the document fields without the identifier.
type Document struct {
	ID           string
	CollectionID string
	Data         json.RawMessage
	CreatedAt    string
}

// File describes an object held in a storage bucket.
type File struct {
	ID        string
	BucketID  string
	Name      string
	MimeType  string
	Size      int64
	CreatedAt string
}

// FileInput is the payload for uploading a file that already exists on the
// local filesystem.
type FileInput struct {
	Name     string
	MimeType string
	Size     int64
	LocalURI string
}

// Path returns the filesystem path LocalURI points at.
func (in FileInput) Path() string {
	return LocalPath(in.LocalURI)
}

// FileURI converts a filesystem path into a file:// URI.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// LocalPath converts a file:// URI back into a filesystem path. Anything
// that is not a file URI is returned unchanged.
func LocalPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// decode unmarshals the document data into v and validates the result.
func decode(doc Document, v interface{ Validate() error }) error {
	if doc.ID == "" {
		return fmt.Errorf("document without id: %w", ErrInvalidDocument)
	}
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("decode document %s: %v: %w", doc.ID, err, ErrInvalidDocument)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("document %s: %v: %w", doc.ID, err, ErrInvalidDocument)
	}
	return nil
}
