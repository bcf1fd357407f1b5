package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/storage"
	"github.com/minio/minio-go/v7"
)

type TestBucket struct {
	Name    string
	Staging *storage.StagingStorage
	Cleanup func() error
}

// SetupStagingBucket creates a fresh bucket per test so parallel packages do
// not see each other's staged files.
func SetupStagingBucket(raw *minio.Client, strg *storage.Strg) (*TestBucket, error) {
	ctx := context.Background()
	name := fmt.Sprintf("staging-%d", time.Now().UnixNano())

	staging, err := strg.WithBucket(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("could not create bucket %q: %w", name, err)
	}

	cleanup := func() error {
		for obj := range raw.ListObjects(ctx, name, minio.ListObjectsOptions{Recursive: true}) {
			if obj.Err != nil {
				continue
			}
			_ = raw.RemoveObject(ctx, name, obj.Key, minio.RemoveObjectOptions{})
		}
		if err := raw.RemoveBucket(ctx, name); err != nil {
			return fmt.Errorf("could not remove bucket %q: %w", name, err)
		}
		return nil
	}

	return &TestBucket{Name: name, Staging: staging, Cleanup: cleanup}, nil
}
