package spool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

const releaseTimeout = 10 * time.Second

// S3Spool stages documents as objects in a dedicated bucket. Objects are
// removed as soon as the artifact is closed.
type S3Spool struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewS3Spool(client *minio.Client, bucket, prefix string) (*S3Spool, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	return &S3Spool{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Spool) Backend() string {
	return "s3"
}

func (s *S3Spool) objectKey(doc model.Document) string {
	return s.prefix + doc.ID + artifactExt
}

func (s *S3Spool) Stage(ctx context.Context, doc model.Document) (Artifact, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	key := s.objectKey(doc)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(doc.Bytes), doc.Size(), minio.PutObjectOptions{
		ContentType:        doc.MimeType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", doc.FileName),
	})
	if err != nil {
		return nil, fmt.Errorf("put spool object: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		_ = s.remove(key)
		return nil, fmt.Errorf("get spool object: %w", err)
	}

	return &s3Artifact{spool: s, key: key, object: obj, size: doc.Size()}, nil
}

func (s *S3Spool) SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	// An early return must stop the lister goroutine.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	removed := 0
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if info.Err != nil {
			return removed, fmt.Errorf("list spool objects: %w", info.Err)
		}
		if !isArtifactName(info.Key, s.prefix) || !info.LastModified.Before(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("remove stale spool object %s: %w", info.Key, err)
		}
		removed++
	}
	return removed, nil
}

// remove runs detached from the request context so a cancelled request
// still releases its object.
func (s *S3Spool) remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove spool object %s: %w", key, err)
	}
	return nil
}

type s3Artifact struct {
	spool  *S3Spool
	key    string
	object *minio.Object
	size   int64

	closeOnce sync.Once
	closeErr  error
}

func (a *s3Artifact) Read(p []byte) (int, error) {
	return a.object.Read(p)
}

func (a *s3Artifact) Size() int64 {
	return a.size
}

func (a *s3Artifact) Close() error {
	a.closeOnce.Do(func() {
		a.closeErr = errors.Join(a.object.Close(), a.spool.remove(a.key))
	})
	return a.closeErr
}
