package mock

import (
	"context"
	"sync"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// Cache implements cache behaviour for tests.
type Cache struct {
	mu sync.Mutex

	// stored values
	SessionOut []byte

	// etag values
	EtagSession string

	// captured inputs
	TTL time.Duration

	// errors
	GetSessionErr     error
	GetEtagSessionErr error
	DelSessionErr     error
	DelEtagSessionErr error

	// call flags
	GetSessionCalled     bool
	GetEtagSessionCalled bool
	SetSessionCalled     bool
	SetEtagSessionCalled bool
	DelSessionCalled     bool
	DelEtagSessionCalled bool
}

var _ port.Cache = (*Cache)(nil)

func (c *Cache) GetSessionView(ctx context.Context, id uuid.UUID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetSessionCalled = true
	if c.GetSessionErr != nil {
		return nil, c.GetSessionErr
	}
	return c.SessionOut, nil
}

func (c *Cache) GetEtagSessionView(ctx context.Context, id uuid.UUID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetEtagSessionCalled = true
	if c.GetEtagSessionErr != nil {
		return "", c.GetEtagSessionErr
	}
	return c.EtagSession, nil
}

func (c *Cache) SetSessionView(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetSessionCalled = true
	c.SessionOut = data
	c.TTL = ttl
}

func (c *Cache) SetEtagSessionView(ctx context.Context, id uuid.UUID, etag string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetEtagSessionCalled = true
	c.EtagSession = etag
}

func (c *Cache) DeleteSessionView(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DelSessionCalled = true
	if c.DelSessionErr != nil {
		return c.DelSessionErr
	}
	c.SessionOut = nil
	return nil
}

func (c *Cache) DeleteEtagSessionView(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DelEtagSessionCalled = true
	if c.DelEtagSessionErr != nil {
		return c.DelEtagSessionErr
	}
	c.EtagSession = ""
	return nil
}
