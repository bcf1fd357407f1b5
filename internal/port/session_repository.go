package port

import (
	"context"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// SessionRepository defines persistence operations for upload sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	// Update writes s only if the stored generation still equals generation
	// (ErrSessionReset otherwise) and the stored version still equals
	// s.Version (ErrSessionConflict otherwise). On success s.Version is bumped.
	Update(ctx context.Context, s *model.Session, generation int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListUntouchedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error)
}
