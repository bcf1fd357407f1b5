package session

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type errorTogglerSrv struct {
	store
	cfg Config
}

func NewErrorToggler(repo port.SessionRepository, cache port.Cache, cfg Config) port.ErrorToggler {
	return &errorTogglerSrv{store: store{repo: repo, cache: cache}, cfg: cfg.withDefaults()}
}

func (s *errorTogglerSrv) ToggleError(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.apply(ctx, sess, orchestrator.ErrorToggled{}); err != nil {
		return nil, err
	}
	return buildView(sess, s.cfg), nil
}
