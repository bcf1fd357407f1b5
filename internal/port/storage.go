package port

import (
	"context"
	"io"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	SizeBytes   int64
	ContentType string
}

// Storage defines operations on the bucket holding selected video files until
// they are handed to the video platform.
type Storage interface {
	FileExists(ctx context.Context, fileKey string) (bool, error)
	StatFile(ctx context.Context, fileKey string) (FileInfo, error)
	RemoveFile(ctx context.Context, fileKey string) error
	GetFile(ctx context.Context, fileKey string) (io.ReadCloser, error)
	SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error
}
