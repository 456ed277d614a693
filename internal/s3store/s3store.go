// Package s3store implements the object store on an S3 bucket. A file's ID is
// its object key.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/johnwards/menuseed/internal/domain"
)

// Config configures the store.
type Config struct {
	Region string
	// Endpoint overrides the S3 endpoint, for MinIO and other compatible
	// servers. Setting it switches to path-style addressing.
	Endpoint string
	// PublicURL is the base under which objects are served, such as a
	// CloudFront distribution. Defaults to the bucket's S3 URL.
	PublicURL string
	// PublicRead uploads objects with the public-read canned ACL.
	PublicRead bool
	// AccessKeyID and SecretAccessKey, when both set, replace the default
	// credential chain with static credentials.
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectStore is an ObjectStore backed by S3.
type ObjectStore struct {
	client *s3.Client
	cfg    Config
}

// New loads the default AWS configuration (environment, shared config,
// instance role) and creates a store. Static keys in cfg take precedence.
func New(ctx context.Context, cfg Config) (*ObjectStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a store around an existing client.
func NewWithClient(client *s3.Client, cfg Config) *ObjectStore {
	return &ObjectStore{client: client, cfg: cfg}
}

// ListFiles returns every object in the bucket.
func (s *ObjectStore) ListFiles(ctx context.Context, bucketID string) ([]domain.File, error) {
	var files []domain.File
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketID),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", bucketID, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			f := domain.File{
				ID:       key,
				BucketID: bucketID,
				Name:     key,
				Size:     aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				f.CreatedAt = obj.LastModified.UTC().Format(time.RFC3339)
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// CreateFile uploads the local file named by in.LocalURI under the key
// fileID plus the extension of in.Name.
func (s *ObjectStore) CreateFile(ctx context.Context, bucketID, fileID string, in domain.FileInput) (domain.File, error) {
	data, err := os.ReadFile(in.Path())
	if err != nil {
		return domain.File{}, fmt.Errorf("read %s: %w", in.LocalURI, err)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	key := fileID + strings.ToLower(filepath.Ext(in.Name))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucketID),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimeType),
	}
	if s.cfg.PublicRead {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return domain.File{}, fmt.Errorf("upload %s/%s: %w", bucketID, key, err)
	}

	return domain.File{
		ID:       key,
		BucketID: bucketID,
		Name:     in.Name,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

// DeleteFile removes one object. S3 deletes are idempotent, so the object is
// looked up first and a missing one returns domain.ErrNotFound.
func (s *ObjectStore) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucketID),
		Key:    aws.String(fileID),
	})
	if err != nil {
		var nf *s3types.NotFound
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nf) || errors.As(err, &nsk) {
			return fmt.Errorf("file %s/%s: %w", bucketID, fileID, domain.ErrNotFound)
		}
		return fmt.Errorf("head %s/%s: %w", bucketID, fileID, err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketID),
		Key:    aws.String(fileID),
	}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucketID, fileID, err)
	}
	return nil
}

// FileViewURL returns the public URL of an object.
func (s *ObjectStore) FileViewURL(bucketID, fileID string) (string, error) {
	if bucketID == "" || fileID == "" {
		return "", fmt.Errorf("bucket and file id are required")
	}
	switch {
	case s.cfg.PublicURL != "":
		return url.JoinPath(s.cfg.PublicURL, fileID)
	case s.cfg.Endpoint != "":
		return url.JoinPath(s.cfg.Endpoint, bucketID, fileID)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketID, s.cfg.Region, url.PathEscape(fileID)), nil
}
