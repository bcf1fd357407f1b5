package worker

import (
	"context"
	"errors"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/task"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// RunSessionHandler handles a run-session task.
// It converts the incoming task payload to a session id and delegates the
// call to the pipeline runner. A session reset while the task was running is
// not a failure: the task simply has nothing left to do.
func RunSessionHandler(ctx context.Context, p task.RunSessionPayload, svc port.SessionRunner) error {
	id, err := uuid.Parse(p.SessionID)
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid session ID %q: %v", p.SessionID, err)
		return err
	}
	ctx = api_context.WithSessionID(ctx, id)

	err = svc.RunSession(ctx, id)
	if errors.Is(err, port.ErrSessionReset) || errors.Is(err, port.ErrSessionNotFound) {
		logger.Warnf(ctx, "⚠️  Session #%s went away while running: %v", id, err)
		return nil
	}
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to run session #%s: %v", id, err)
		return err
	}

	logger.Infof(ctx, "✅  Successfully ran session #%s", id)
	return nil
}
