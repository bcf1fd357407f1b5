package port

import (
	"context"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// Cache holds rendered session views and their ETags.
type Cache interface {
	GetSessionView(ctx context.Context, id uuid.UUID) ([]byte, error)
	GetEtagSessionView(ctx context.Context, id uuid.UUID) (string, error)
	SetSessionView(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration)
	SetEtagSessionView(ctx context.Context, id uuid.UUID, etag string, ttl time.Duration)
	DeleteSessionView(ctx context.Context, id uuid.UUID) error
	DeleteEtagSessionView(ctx context.Context, id uuid.UUID) error
}
