package seed

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/johnwards/menuseed/internal/domain"
)

const fallbackMimeType = "image/jpeg"

// UploadImage copies a remote image into the bucket and returns its public
// view URL. The image is downloaded into the cache directory first and the
// cached copy is left in place.
func (s *Seeder) UploadImage(ctx context.Context, sourceURL string) (viewURL string, err error) {
	ctx, span := s.startSpan(ctx, "seed.upload_image", attribute.String("source_url", sourceURL))
	defer func() { endSpan(span, err) }()

	name := cacheFileName(sourceURL, s.now().UnixMilli())
	localPath := filepath.Join(s.cfg.CacheDir, name)

	dl, err := s.fetcher.DownloadToCache(ctx, sourceURL, localPath)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", sourceURL, err)
	}
	if dl.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s (status %d)", ErrDownload, sourceURL, dl.StatusCode)
	}

	info, err := s.fetcher.Stat(dl.LocalURI)
	if err != nil {
		return "", err
	}
	if !info.Exists {
		return "", fmt.Errorf("%w at: %s", ErrFileNotFound, dl.LocalURI)
	}

	if err := s.wait(ctx); err != nil {
		return "", err
	}
	file, err := s.files.CreateFile(ctx, s.cfg.BucketID, s.newID(), domain.FileInput{
		Name:     name,
		MimeType: mimeType(name),
		Size:     info.Size,
		LocalURI: dl.LocalURI,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	s.metrics.fileUploaded()

	viewURL, err = s.files.FileViewURL(s.cfg.BucketID, file.ID)
	if err != nil {
		return "", fmt.Errorf("view url for %s: %w", file.ID, err)
	}
	return viewURL, nil
}

// cacheFileName takes the last path segment of the source URL, falling back
// to a timestamped name when the URL has none.
func cacheFileName(sourceURL string, unixMilli int64) string {
	if u, err := url.Parse(sourceURL); err == nil {
		if name := path.Base(u.Path); name != "." && name != ".." && name != "/" {
			return name
		}
	}
	return fmt.Sprintf("file-%d.jpg", unixMilli)
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return fallbackMimeType
}
