package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/metrics"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 4

type staleSweeperSrv struct {
	store
	cfg Config
}

func NewStaleSweeper(repo port.SessionRepository, cache port.Cache, strg port.Storage, cfg Config) port.StaleSweeper {
	return &staleSweeperSrv{store: store{repo: repo, cache: cache, strg: strg}, cfg: cfg.withDefaults()}
}

// SweepStale deletes every session nobody touched for SessionTTL, together
// with its staged file. A failed deletion does not stop the sweep.
func (s *staleSweeperSrv) SweepStale(ctx context.Context) error {
	if s.cfg.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	before := s.cfg.Now().Add(-s.cfg.SessionTTL)

	ids, err := s.repo.ListUntouchedBefore(ctx, before)
	if err != nil {
		return fmt.Errorf("list stale sessions: %w", err)
	}
	if len(ids) == 0 {
		logger.Info(ctx, "no stale session to sweep")
		return nil
	}

	var (
		deleted atomic.Int64
		g       errgroup.Group
	)
	g.SetLimit(sweepConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			err := s.deleteSession(ctx, id)
			if errors.Is(err, port.ErrSessionNotFound) {
				return nil
			}
			if err != nil {
				logger.Errorf(ctx, "❌  could not sweep session #%s: %v", id, err)
				return fmt.Errorf("sweep session #%s: %w", id, err)
			}
			deleted.Add(1)
			return nil
		})
	}
	err = g.Wait()

	metrics.RecordSwept(int(deleted.Load()))
	logger.Infof(ctx, "✅  swept %d of %d stale sessions", deleted.Load(), len(ids))
	return err
}
