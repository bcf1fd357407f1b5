package session

import (
	"context"
	"fmt"

	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/validation"
)

type formEditorSrv struct {
	store
	cfg Config
}

func NewFormEditor(repo port.SessionRepository, cache port.Cache, cfg Config) port.FormEditor {
	return &formEditorSrv{store: store{repo: repo, cache: cache}, cfg: cfg.withDefaults()}
}

func (s *formEditorSrv) EditForm(ctx context.Context, in port.EditFormInput) (*port.SessionView, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sess, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.apply(ctx, sess, orchestrator.FormEdited{Name: in.Name, Description: in.Description}); err != nil {
		return nil, err
	}
	return buildView(sess, s.cfg), nil
}
