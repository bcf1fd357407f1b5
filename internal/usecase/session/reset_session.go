package session

import (
	"context"
	"errors"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

const resetAttempts = 3

type sessionResetterSrv struct {
	store
	cfg Config
}

func NewSessionResetter(repo port.SessionRepository, cache port.Cache, strg port.Storage, cfg Config) port.SessionResetter {
	return &sessionResetterSrv{store: store{repo: repo, cache: cache, strg: strg}, cfg: cfg.withDefaults()}
}

// ResetSession always wins: when another reset bumped the generation first,
// it reloads and resets again.
func (s *sessionResetterSrv) ResetSession(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	var lastErr error
	for range resetAttempts {
		sess, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		cmds, err := s.apply(ctx, sess, orchestrator.Reset{})
		if errors.Is(err, port.ErrSessionReset) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		s.discard(ctx, cmds)
		logger.Infof(ctx, "✅  reset session #%s to generation %d", id, sess.Generation)
		return buildView(sess, s.cfg), nil
	}
	return nil, lastErr
}
