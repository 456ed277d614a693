package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	"github.com/johnwards/menuseed/internal/domain"
)

const defaultMimeType = "application/octet-stream"

// SQLiteFileStore implements backend.ObjectStore backed by SQLite. File
// content is stored inline as a BLOB.
type SQLiteFileStore struct {
	db        *sql.DB
	publicURL string
}

// NewSQLiteFileStore creates a new SQLiteFileStore. View URLs are built
// under publicURL.
func NewSQLiteFileStore(db *sql.DB, publicURL string) *SQLiteFileStore {
	return &SQLiteFileStore{db: db, publicURL: publicURL}
}

// ListFiles returns the metadata of every file in a bucket.
func (s *SQLiteFileStore) ListFiles(ctx context.Context, bucketID string) ([]domain.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, mime_type, size, created_at FROM files WHERE bucket_id = ? ORDER BY seq ASC`,
		bucketID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []domain.File
	for rows.Next() {
		f := domain.File{BucketID: bucketID}
		if err := rows.Scan(&f.ID, &f.Name, &f.MimeType, &f.Size, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return files, nil
}

// CreateFile reads the local file referenced by in and stores it under fileID.
func (s *SQLiteFileStore) CreateFile(ctx context.Context, bucketID, fileID string, in domain.FileInput) (domain.File, error) {
	content, err := os.ReadFile(in.Path())
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", in.LocalURI, err)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	f := domain.File{
		ID:        fileID,
		BucketID:  bucketID,
		Name:      in.Name,
		MimeType:  mimeType,
		Size:      int64(len(content)),
		CreatedAt: now(),
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO files (bucket_id, id, name, mime_type, size, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.BucketID, f.ID, f.Name, f.MimeType, f.Size, content, f.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.File{}, fmt.Errorf("file %q already exists: %w", fileID, domain.ErrConflict)
		}
		return domain.File{}, fmt.Errorf("insert file: %w", err)
	}

	return f, nil
}

// Content returns a stored file together with its bytes.
func (s *SQLiteFileStore) Content(ctx context.Context, bucketID, fileID string) (domain.File, []byte, error) {
	f := domain.File{ID: fileID, BucketID: bucketID}
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT name, mime_type, size, content, created_at FROM files WHERE bucket_id = ? AND id = ?`,
		bucketID, fileID,
	).Scan(&f.Name, &f.MimeType, &f.Size, &content, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.File{}, nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.File{}, nil, fmt.Errorf("get file %s: %w", fileID, err)
	}
	return f, content, nil
}

// DeleteFile removes a file. Deleting a missing file returns domain.ErrNotFound.
func (s *SQLiteFileStore) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE bucket_id = ? AND id = ?`, bucketID, fileID)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	return nil
}

// FileViewURL returns the public view URL of a file.
func (s *SQLiteFileStore) FileViewURL(bucketID, fileID string) (string, error) {
	u, err := url.JoinPath(s.publicURL, "v1", "storage", "buckets", bucketID, "files", fileID, "view")
	if err != nil {
		return "", fmt.Errorf("build view url: %w", err)
	}
	return u, nil
}
