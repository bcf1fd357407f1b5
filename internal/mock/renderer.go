package mock

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// HTTPRenderer implements port.HTTPRenderer for tests.
type HTTPRenderer struct {
	// stored values
	SessionOut []byte

	// etag values
	EtagSession string

	// captured inputs
	GotSessionID uuid.UUID

	// errors
	GetSessionErr error

	// call flags
	GetSessionCalled bool
}

var _ port.HTTPRenderer = (*HTTPRenderer)(nil)

func (m *HTTPRenderer) RenderGetSession(ctx context.Context, getter port.SessionGetter, id uuid.UUID) ([]byte, string, error) {
	m.GetSessionCalled = true
	m.GotSessionID = id
	return m.SessionOut, m.EtagSession, m.GetSessionErr
}
