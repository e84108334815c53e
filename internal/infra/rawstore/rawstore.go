// Package rawstore archives raw listing payloads on object storage.
// Objects are written once per (date, source, listing) and never deleted, so
// any past day can be re-normalized and re-scored against a later preference
// version.
package rawstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/hamiltoon/housing-scout/internal/domain/enums"
)

type Store struct {
	client *minio.Client
	bucket string
}

func New(client *minio.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// Put archives one raw payload and returns the object key the property
// record should reference.
func (s *Store) Put(ctx context.Context, date string, source enums.Source, sourceID string, payload []byte) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if date == "" || source == "" || sourceID == "" {
		return "", fmt.Errorf("invalid raw object coordinates")
	}

	key := objectKey(date, source, sourceID)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("archive raw listing %s: %w", key, err)
	}

	return key, nil
}

func objectKey(date string, source enums.Source, sourceID string) string {
	return fmt.Sprintf("raw/%s/%s/%s.json", date, source, sourceID)
}
