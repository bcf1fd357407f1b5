package storage

import (
	"context"
	"errors"
	"io"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StagingStorage keeps selected video files in one bucket until the pipeline
// has handed them to the video platform.
type StagingStorage struct {
	client     minioClient
	bucketName string
}

type Strg struct {
	Client minioClient
}

// compile-time check: *StagingStorage must satisfy port.Storage
var _ port.Storage = (*StagingStorage)(nil)

func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*Strg, error) {
	logger.Info(context.Background(), "initialising minio client...")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return &Strg{Client: client}, nil
}

// WithBucket binds the client to bucket, creating the bucket when missing.
func (c *Strg) WithBucket(ctx context.Context, bucket string) (*StagingStorage, error) {
	ok, err := c.Client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if !ok {
		logger.Infof(ctx, "bucket %q does not exist, creating it...", bucket)
		if err := c.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, mapMinioErr(err)
		}
	}
	return &StagingStorage{client: c.Client, bucketName: bucket}, nil
}

func (s *StagingStorage) FileExists(ctx context.Context, fileKey string) (bool, error) {
	logger.Debugf(ctx, "checking if file %q exists in bucket %q...", fileKey, s.bucketName)

	_, err := s.StatFile(ctx, fileKey)
	if errors.Is(err, port.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *StagingStorage) StatFile(ctx context.Context, fileKey string) (port.FileInfo, error) {
	logger.Debugf(ctx, "getting stats on file %q in bucket %q...", fileKey, s.bucketName)

	info, err := s.client.StatObject(ctx, s.bucketName, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return port.FileInfo{}, mapMinioErr(err)
	}
	return port.FileInfo{
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (s *StagingStorage) RemoveFile(ctx context.Context, fileKey string) error {
	logger.Debugf(ctx, "removing file %q from bucket %q...", fileKey, s.bucketName)

	err := s.client.RemoveObject(ctx, s.bucketName, fileKey, minio.RemoveObjectOptions{})
	return mapMinioErr(err)
}

func (s *StagingStorage) GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error) {
	logger.Debugf(ctx, "getting file %q from bucket %q...", fileKey, s.bucketName)

	obj, err := s.client.GetObject(ctx, s.bucketName, fileKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return obj, nil
}

// SaveFile streams reader into the bucket. A negative fileSize lets minio
// switch to a multipart upload of unknown length.
func (s *StagingStorage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	logger.Debugf(ctx, "saving file %q into bucket %q...", fileKey, s.bucketName)

	putOpts := minio.PutObjectOptions{}
	if ct := opts["Content-Type"]; ct != "" {
		putOpts.ContentType = ct
	}
	if name := opts["File-Name"]; name != "" {
		putOpts.UserMetadata = map[string]string{"file-name": name}
	}

	_, err := s.client.PutObject(ctx, s.bucketName, fileKey, reader, fileSize, putOpts)
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}
