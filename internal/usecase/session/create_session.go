package session

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

type sessionCreatorSrv struct {
	repo port.SessionRepository
	gen  port.UUIDGen
	cfg  Config
}

func NewSessionCreator(repo port.SessionRepository, gen port.UUIDGen, cfg Config) port.SessionCreator {
	return &sessionCreatorSrv{repo: repo, gen: gen, cfg: cfg.withDefaults()}
}

func (s *sessionCreatorSrv) CreateSession(ctx context.Context, in port.CreateSessionInput) (*port.SessionView, error) {
	sess := model.NewSession(s.gen(), in.OwnerID)
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	logger.Infof(ctx, "✅  created session #%s", sess.ID)
	return buildView(sess, s.cfg), nil
}
