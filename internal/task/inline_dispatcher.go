package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// InlineDispatcher runs sessions in goroutines of the API process. It is used
// when no Redis is configured, so a lone API instance still works end to end.
type InlineDispatcher struct {
	runner  port.SessionRunner
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running map[string]struct{}
}

var _ port.TaskDispatcher = (*InlineDispatcher)(nil)

func NewInlineDispatcher(runner port.SessionRunner, timeout time.Duration) *InlineDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &InlineDispatcher{
		runner:  runner,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		running: map[string]struct{}{},
	}
}

// EnqueueRunSession starts the run and returns immediately. The run does not
// inherit ctx: it must outlive the request that submitted the session. A
// generation that is already running is not started again.
func (d *InlineDispatcher) EnqueueRunSession(ctx context.Context, id uuid.UUID, generation int) error {
	if err := d.ctx.Err(); err != nil {
		return errors.New("inline dispatcher closed")
	}

	key := RunTaskID(id, generation)
	d.mu.Lock()
	if _, ok := d.running[key]; ok {
		d.mu.Unlock()
		logger.Warnf(ctx, "⚠️  run of session #%s generation %d is already running", id, generation)
		return nil
	}
	d.running[key] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			delete(d.running, key)
			d.mu.Unlock()
		}()

		runCtx, cancel := context.WithTimeout(api_context.WithSessionID(d.ctx, id), d.timeout)
		defer cancel()

		if err := d.runner.RunSession(runCtx, id); err != nil {
			logger.Errorf(runCtx, "❌  inline run of session #%s failed: %v", id, err)
		}
	}()
	return nil
}

// Close cancels every running session and waits for them to return.
func (d *InlineDispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
