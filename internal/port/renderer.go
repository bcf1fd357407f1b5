package port

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// HTTPRenderer mediates between HTTP handlers and the session getter use case.
// It provides caching capabilities and returns both the JSON representation of
// the result as well as an ETag value derived from it.
type HTTPRenderer interface {
	// RenderGetSession returns the cached JSON view and its ETag if available or
	// executes the underlying use case and caches the output otherwise.
	RenderGetSession(ctx context.Context, getter SessionGetter, id uuid.UUID) ([]byte, string, error)
}
