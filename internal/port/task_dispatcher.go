package port

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// TaskDispatcher hands a submitted session over to the pipeline runner. A
// generation of a session is handed over at most once.
type TaskDispatcher interface {
	EnqueueRunSession(ctx context.Context, id uuid.UUID, generation int) error
}
