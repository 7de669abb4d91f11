package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectInfo is the listing entry returned by the object store: full key plus
// size and modification time.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// MinIOStore adapts a minio.Client to the narrow object-store contract the
// service layer consumes. All operations address objects by full key.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore constructs an adapter bound to one backing bucket.
func NewMinIOStore(client *minio.Client, bucket string) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket}
}

// Put writes an object with upsert semantics: an existing key is overwritten.
func (s *MinIOStore) Put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Get fetches the full contents of one object. A missing key reports
// ErrObjectNotFound.
func (s *MinIOStore) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object %q: %w", key, err)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return content, nil
}

// ListPrefix enumerates every object under the prefix recursively.
func (s *MinIOStore) ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for entry := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if entry.Err != nil {
			return nil, fmt.Errorf("list prefix %q: %w", prefix, entry.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          entry.Key,
			Size:         entry.Size,
			LastModified: entry.LastModified,
		})
	}
	return objects, nil
}

// RemoveMany deletes the given keys, best effort. The first delivery error is
// returned after the batch drains.
func (s *MinIOStore) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var firstErr error
	for removeErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if removeErr.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove object %q: %w", removeErr.ObjectName, removeErr.Err)
		}
	}
	return firstErr
}
