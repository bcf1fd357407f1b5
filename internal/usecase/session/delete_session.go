package session

import (
	"context"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

type sessionDeleterSrv struct {
	store
}

func NewSessionDeleter(repo port.SessionRepository, cache port.Cache, strg port.Storage) port.SessionDeleter {
	return &sessionDeleterSrv{store{repo: repo, cache: cache, strg: strg}}
}

func (s *sessionDeleterSrv) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := s.deleteSession(ctx, id); err != nil {
		return err
	}
	logger.Infof(ctx, "✅  deleted session #%s", id)
	return nil
}
