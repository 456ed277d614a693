// Package fetch downloads remote files into a local cache directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/johnwards/menuseed/internal/domain"
)

// Download is the outcome of DownloadToCache. LocalURI is set only when the
// response status was 200.
type Download struct {
	LocalURI   string
	StatusCode int
}

// FileInfo describes a cached file.
type FileInfo struct {
	Exists bool
	Size   int64
}

// Downloader fetches remote files over HTTP.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a Downloader. A nil client gets a default client
// with a 30s timeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{client: client}
}

// DownloadToCache fetches remoteURL and writes the body to localPath. A
// non-200 status is reported in the result, not as an error, and nothing is
// written.
func (d *Downloader) DownloadToCache(ctx context.Context, remoteURL, localPath string) (Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return Download{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Download{}, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Download{StatusCode: resp.StatusCode}, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return Download{}, fmt.Errorf("create cache dir: %w", err)
	}

	// Write to a temp file first so an interrupted download never leaves a
	// truncated file under the final name.
	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".download-*")
	if err != nil {
		return Download{}, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return Download{}, fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Download{}, fmt.Errorf("close %s: %w", localPath, err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		_ = os.Remove(tmp.Name())
		return Download{}, fmt.Errorf("move download into place: %w", err)
	}

	return Download{LocalURI: domain.FileURI(localPath), StatusCode: resp.StatusCode}, nil
}

// Stat reports whether localURI exists and its size. localURI may be a
// file:// URI or a plain path.
func (d *Downloader) Stat(localURI string) (FileInfo, error) {
	info, err := os.Stat(domain.LocalPath(localURI))
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{}, nil
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", localURI, err)
	}
	if info.IsDir() {
		return FileInfo{}, nil
	}
	return FileInfo{Exists: true, Size: info.Size()}, nil
}
