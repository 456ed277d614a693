package seed

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/johnwards/menuseed/internal/domain"
)

// ClearReport summarises one clear operation.
type ClearReport struct {
	Listed   int
	Deleted  int
	NotFound int
	Failed   int
}

// ClearAll deletes every document in a collection. Deletes run concurrently,
// bounded by Config.DeleteConcurrency. A document that is already gone is
// not an error. Other delete failures are logged and counted, and fail the
// clear only in strict mode. Listing failures always fail the clear.
func (s *Seeder) ClearAll(ctx context.Context, collectionID string) (report ClearReport, err error) {
	ctx, span := s.startSpan(ctx, "seed.clear_collection", attribute.String("collection", collectionID))
	defer func() { endSpan(span, err) }()

	if err := s.wait(ctx); err != nil {
		return ClearReport{}, err
	}
	docs, err := s.docs.ListDocuments(ctx, s.cfg.DatabaseID, collectionID)
	if err != nil {
		return ClearReport{}, fmt.Errorf("list documents in %s: %w", collectionID, err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	report = s.deleteAll(ctx, "collection", collectionID, ids, func(ctx context.Context, id string) error {
		return s.docs.DeleteDocument(ctx, s.cfg.DatabaseID, collectionID, id)
	})
	s.metrics.observeDocumentsDeleted(collectionID, report)
	s.logger.Debug("cleared collection", "collection", collectionID,
		"deleted", report.Deleted, "not_found", report.NotFound, "failed", report.Failed)

	return report, s.clearError(ctx, collectionID, report)
}

// ClearStorage deletes every file in the bucket with the same rules as ClearAll.
func (s *Seeder) ClearStorage(ctx context.Context) (report ClearReport, err error) {
	ctx, span := s.startSpan(ctx, "seed.clear_storage", attribute.String("bucket", s.cfg.BucketID))
	defer func() { endSpan(span, err) }()

	if err := s.wait(ctx); err != nil {
		return ClearReport{}, err
	}
	files, err := s.files.ListFiles(ctx, s.cfg.BucketID)
	if err != nil {
		return ClearReport{}, fmt.Errorf("list files in %s: %w", s.cfg.BucketID, err)
	}

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	report = s.deleteAll(ctx, "bucket", s.cfg.BucketID, ids, func(ctx context.Context, id string) error {
		return s.files.DeleteFile(ctx, s.cfg.BucketID, id)
	})
	s.metrics.observeFilesDeleted(report)
	s.logger.Debug("cleared storage", "bucket", s.cfg.BucketID,
		"deleted", report.Deleted, "not_found", report.NotFound, "failed", report.Failed)

	return report, s.clearError(ctx, s.cfg.BucketID, report)
}

// deleteAll runs del for every id and waits for all of them to settle.
func (s *Seeder) deleteAll(ctx context.Context, kind, target string, ids []string, del func(context.Context, string) error) ClearReport {
	var deleted, notFound, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.DeleteConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			err := s.wait(ctx)
			if err == nil {
				err = del(ctx, id)
			}
			switch {
			case err == nil:
				deleted.Add(1)
			case errors.Is(err, domain.ErrNotFound):
				notFound.Add(1)
			default:
				failed.Add(1)
				s.logger.Warn("delete failed", kind, target, "id", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return ClearReport{
		Listed:   len(ids),
		Deleted:  int(deleted.Load()),
		NotFound: int(notFound.Load()),
		Failed:   int(failed.Load()),
	}
}

func (s *Seeder) clearError(ctx context.Context, target string, report ClearReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.StrictClear && report.Failed > 0 {
		return fmt.Errorf("%s: %d of %d deletes failed: %w", target, report.Failed, report.Listed, ErrClearFailed)
	}
	return nil
}
