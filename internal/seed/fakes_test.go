package seed_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/fetch"
)

// flakyDocs wraps a DocumentStore and lets tests inject failures.
type flakyDocs struct {
	backend.DocumentStore

	listErr   error
	deleteErr func(id string) error
}

func (f *flakyDocs) ListDocuments(ctx context.Context, databaseID, collectionID string) ([]domain.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.DocumentStore.ListDocuments(ctx, databaseID, collectionID)
}

func (f *flakyDocs) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	if f.deleteErr != nil {
		if err := f.deleteErr(documentID); err != nil {
			return err
		}
	}
	return f.DocumentStore.DeleteDocument(ctx, databaseID, collectionID, documentID)
}

// countingFiles wraps an ObjectStore and counts uploads.
type countingFiles struct {
	backend.ObjectStore
	creates atomic.Int64
}

func (c *countingFiles) CreateFile(ctx context.Context, bucketID, fileID string, in domain.FileInput) (domain.File, error) {
	c.creates.Add(1)
	return c.ObjectStore.CreateFile(ctx, bucketID, fileID, in)
}

// slowDocs is an in-memory DocumentStore whose deletes take a while, so the
// number of deletes in flight can be observed.
type slowDocs struct {
	mu       sync.Mutex
	docs     map[string]bool
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func newSlowDocs(n int) *slowDocs {
	s := &slowDocs{docs: make(map[string]bool, n)}
	for i := range n {
		s.docs[fmt.Sprintf("doc-%02d", i)] = true
	}
	return s
}

func (s *slowDocs) ListDocuments(_ context.Context, _, collectionID string) ([]domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(s.docs))
	for id := range s.docs {
		out = append(out, domain.Document{ID: id, CollectionID: collectionID})
	}
	return out, nil
}

func (s *slowDocs) CreateDocument(context.Context, string, string, string, any) (domain.Document, error) {
	return domain.Document{}, fmt.Errorf("not supported")
}

func (s *slowDocs) DeleteDocument(_ context.Context, _, _, documentID string) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.docs[documentID] {
		return domain.ErrNotFound
	}
	delete(s.docs, documentID)
	return nil
}

// stubFetcher returns canned download results and records the paths asked for.
type stubFetcher struct {
	status int
	exists bool
	paths  []string
}

func (f *stubFetcher) DownloadToCache(_ context.Context, _, localPath string) (fetch.Download, error) {
	f.paths = append(f.paths, localPath)
	return fetch.Download{LocalURI: domain.FileURI(localPath), StatusCode: f.status}, nil
}

func (f *stubFetcher) Stat(string) (fetch.FileInfo, error) {
	return fetch.FileInfo{Exists: f.exists, Size: 3}, nil
}
