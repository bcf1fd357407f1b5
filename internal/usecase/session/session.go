package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/metrics"
	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/orchestrator"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// store bundles what every use case needs to read and write a session.
type store struct {
	repo  port.SessionRepository
	cache port.Cache
	strg  port.Storage
}

// conflictAttempts bounds how often apply reloads a session that another
// writer updated first.
const conflictAttempts = 5

// apply feeds ev into s and persists the result under the generation s was
// loaded with. When another writer got there first, the fresh copy is
// reloaded and ev applied again, so the loser sees the winner's state. s is
// only modified when the write succeeds.
func (st store) apply(ctx context.Context, s *model.Session, ev orchestrator.Event) ([]orchestrator.Command, error) {
	cur := s
	for attempt := 1; ; attempt++ {
		next := *cur
		cmds, err := orchestrator.Apply(&next, ev)
		if err != nil {
			return nil, err
		}
		err = st.repo.Update(ctx, &next, s.Generation)
		if errors.Is(err, port.ErrSessionConflict) && attempt < conflictAttempts {
			logger.Debugf(ctx, "session #%s changed under %T, reloading", s.ID, ev)
			fresh, gErr := st.repo.GetByID(ctx, s.ID)
			if gErr != nil {
				return nil, gErr
			}
			if fresh.Generation != s.Generation {
				return nil, fmt.Errorf("%w: generation %d, loaded %d", port.ErrSessionReset, fresh.Generation, s.Generation)
			}
			cur = fresh
			continue
		}
		if err != nil {
			return nil, err
		}
		if next.State != cur.State {
			logger.Debugf(ctx, "session #%s: %s -> %s", s.ID, cur.State, next.State)
			metrics.RecordTransition(string(next.State))
		}
		*s = next
		st.invalidate(ctx, s.ID)
		return cmds, nil
	}
}

func (st store) invalidate(ctx context.Context, id uuid.UUID) {
	if err := st.cache.DeleteSessionView(ctx, id); err != nil {
		logger.Warnf(ctx, "⚠️  could not invalidate cached view of session #%s: %v", id, err)
	}
	if err := st.cache.DeleteEtagSessionView(ctx, id); err != nil {
		logger.Warnf(ctx, "⚠️  could not invalidate cached etag of session #%s: %v", id, err)
	}
}

// discard executes the DiscardFile commands in cmds. Staged files are
// disposable, so failures are only logged.
func (st store) discard(ctx context.Context, cmds []orchestrator.Command) {
	for _, c := range cmds {
		d, ok := c.(orchestrator.DiscardFile)
		if !ok {
			continue
		}
		st.removeFile(ctx, d.Key)
	}
}

func (st store) removeFile(ctx context.Context, key string) {
	if err := st.strg.RemoveFile(ctx, key); err != nil && !errors.Is(err, port.ErrObjectNotFound) {
		logger.Warnf(ctx, "⚠️  could not remove staged file %q: %v", key, err)
	}
}

// deleteSession removes the record first so a running pipeline stops at its
// next write, then the staged file.
func (st store) deleteSession(ctx context.Context, id uuid.UUID) error {
	s, err := st.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := st.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.FileKey != nil {
		st.removeFile(ctx, *s.FileKey)
	}
	st.invalidate(ctx, id)
	return nil
}

func buildView(s *model.Session, cfg Config) *port.SessionView {
	v := &port.SessionView{
		ID:           s.ID,
		State:        s.State,
		FileName:     s.FileName,
		AssetName:    s.AssetName,
		Description:  s.Description,
		Recipient:    s.Recipient,
		CanSubmit:    orchestrator.CanSubmit(s),
		Busy:         orchestrator.Busy(s),
		ProgressText: orchestrator.ProgressText(s.ProgressPhase, s.Progress),
		Percent:      orchestrator.Percent(s.Progress),
		StageText:    orchestrator.StageText(s),
		IPFSCID:      s.IPFSCID,
		GatewayURL:   s.GatewayURL,
		MetadataURL:  s.MetadataURL,
		MintFailed:   s.State == model.StateMintFailed,
		ShowError:    s.ShowError,
		ValidUntil:   cfg.Now().Add(cfg.ViewTTL),
	}
	if s.AssetID != nil {
		v.AssetID = *s.AssetID
	}
	if s.FailureMessage != nil {
		v.Failure = *s.FailureMessage
	}
	if s.State == model.StateMinted && s.TxHash != nil {
		v.TxHash = *s.TxHash
		v.ExplorerURL = ExplorerTxURL(cfg.ExplorerBaseURL, *s.TxHash)
		v.ShareURL = ShareURL(s.AssetName)
	}
	if v.MintFailed && s.ShowError && s.MintError != nil {
		v.MintError = *s.MintError
	}
	return v
}
