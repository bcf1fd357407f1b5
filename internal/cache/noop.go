package cache

import (
	"context"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

// compile-time check: *NoopCache must satisfy port.Cache
var _ port.Cache = (*NoopCache)(nil)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) GetSessionView(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return nil, nil // always cache miss
}

func (n *NoopCache) GetEtagSessionView(ctx context.Context, id uuid.UUID) (string, error) {
	return "", nil
}

func (n *NoopCache) SetSessionView(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration) {
}

func (n *NoopCache) SetEtagSessionView(ctx context.Context, id uuid.UUID, etag string, ttl time.Duration) {
}

func (n *NoopCache) DeleteSessionView(ctx context.Context, id uuid.UUID) error { return nil }

func (n *NoopCache) DeleteEtagSessionView(ctx context.Context, id uuid.UUID) error {
	return nil
}
