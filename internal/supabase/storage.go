package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/johnwards/menuseed/internal/domain"
)

// ObjectStore keeps files in a Supabase Storage bucket. A file's ID is its
// object path inside the bucket.
type ObjectStore struct {
	client *Client
}

// Storage returns an ObjectStore backed by c.
func (c *Client) Storage() *ObjectStore {
	return &ObjectStore{client: c}
}

type storageObject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Metadata  *struct {
		Size     int64  `json:"size"`
		MimeType string `json:"mimetype"`
	} `json:"metadata"`
}

func (s *ObjectStore) objectURL(bucketID, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.client.baseURL, url.PathEscape(bucketID), escapePath(path))
}

// ListFiles returns the objects at the root of the bucket. Folder
// placeholders are skipped.
func (s *ObjectStore) ListFiles(ctx context.Context, bucketID string) ([]domain.File, error) {
	listURL := fmt.Sprintf("%s/storage/v1/object/list/%s", s.client.baseURL, url.PathEscape(bucketID))

	var files []domain.File
	for offset := 0; ; offset += s.client.pageSize {
		body := map[string]any{
			"prefix": "",
			"limit":  s.client.pageSize,
			"offset": offset,
			"sortBy": map[string]string{"column": "name", "order": "asc"},
		}
		req, err := s.client.newRequest(ctx, http.MethodPost, listURL, body)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.send(req)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", bucketID, err)
		}
		var objects []storageObject
		if err := resp.JSON(&objects); err != nil {
			return nil, fmt.Errorf("decode bucket %s listing: %w", bucketID, err)
		}

		for _, o := range objects {
			// Folders come back without an id.
			if o.ID == "" {
				continue
			}
			files = append(files, o.toFile(bucketID))
		}
		if len(objects) < s.client.pageSize {
			return files, nil
		}
	}
}

// CreateFile uploads the local file named by in.LocalURI. The object path is
// fileID followed by the extension of in.Name.
func (s *ObjectStore) CreateFile(ctx context.Context, bucketID, fileID string, in domain.FileInput) (domain.File, error) {
	data, err := os.ReadFile(in.Path())
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", in.LocalURI, err)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	path := fileID + strings.ToLower(filepath.Ext(in.Name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucketID, path), bytes.NewReader(data))
	if err != nil {
		return domain.File{}, fmt.Errorf("create request: %w", err)
	}
	s.client.setHeaders(req)
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("x-upsert", "false")

	if _, err := s.client.send(req); err != nil {
		return domain.File{}, fmt.Errorf("upload %s/%s: %w", bucketID, path, err)
	}

	return domain.File{
		ID:       path,
		BucketID: bucketID,
		Name:     in.Name,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

// DeleteFile removes one object. A missing object returns domain.ErrNotFound.
func (s *ObjectStore) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	req, err := s.client.newRequest(ctx, http.MethodDelete, s.objectURL(bucketID, fileID), nil)
	if err != nil {
		return err
	}
	if _, err := s.client.send(req); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucketID, fileID, err)
	}
	return nil
}

// FileViewURL returns the public URL of an object. The bucket must be public.
func (s *ObjectStore) FileViewURL(bucketID, fileID string) (string, error) {
	if bucketID == "" || fileID == "" {
		return "", fmt.Errorf("bucket and file id are required")
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.client.baseURL, url.PathEscape(bucketID), escapePath(fileID)), nil
}

func (o storageObject) toFile(bucketID string) domain.File {
	f := domain.File{
		ID:        o.Name,
		BucketID:  bucketID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
	}
	if o.Metadata != nil {
		f.Size = o.Metadata.Size
		f.MimeType = o.Metadata.MimeType
	}
	return f
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
