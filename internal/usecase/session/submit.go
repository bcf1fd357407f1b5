package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/validation"
)

type submitterSrv struct {
	store
	tasks port.TaskDispatcher
	cfg   Config
}

func NewSubmitter(repo port.SessionRepository, cache port.Cache, tasks port.TaskDispatcher, cfg Config) port.Submitter {
	return &submitterSrv{store: store{repo: repo, cache: cache}, tasks: tasks, cfg: cfg.withDefaults()}
}

// Submit locks the form and hands the session to the pipeline. The
// CreateAsset command emitted here is carried out by the runner.
func (s *submitterSrv) Submit(ctx context.Context, in port.SubmitInput) (*port.SessionView, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	sess, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.apply(ctx, sess, orchestrator.Submitted{
		Name:        in.Name,
		Description: in.Description,
		Recipient:   in.Recipient,
	}); err != nil {
		return nil, err
	}

	if err := s.tasks.EnqueueRunSession(ctx, sess.ID, sess.Generation); err != nil {
		logger.Errorf(ctx, "❌  could not enqueue run of session #%s: %v", sess.ID, err)
		if _, failErr := s.apply(ctx, sess, orchestrator.AssetFailed{Message: pipelineStartFailedMessage}); failErr != nil {
			logger.Errorf(ctx, "❌  could not mark session #%s as failed: %v", sess.ID, failErr)
		}
		return nil, errors.Join(ErrPipelineStart, err)
	}

	logger.Infof(ctx, "🚀  submitted session #%s as %q", sess.ID, sess.AssetName)
	return buildView(sess, s.cfg), nil
}
