package session

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type sessionGetterSrv struct {
	repo port.SessionRepository
	cfg  Config
}

func NewSessionGetter(repo port.SessionRepository, cfg Config) port.SessionGetter {
	return &sessionGetterSrv{repo: repo, cfg: cfg.withDefaults()}
}

func (s *sessionGetterSrv) GetSession(ctx context.Context, id uuid.UUID) (*port.SessionView, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildView(sess, s.cfg), nil
}
