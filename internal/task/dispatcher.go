package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
	"github.com/hibiken/asynq"
)

type Dispatcher struct {
	client  *asynq.Client
	timeout time.Duration
}

// compile-time check
var _ port.TaskDispatcher = (*Dispatcher)(nil)

// NewDispatcher enqueues run-session tasks on Redis. A session run is never
// retried: a second run would upload the file a second time.
func NewDispatcher(addr, password string, timeout time.Duration) *Dispatcher {
	c := asynq.NewClient(asynq.RedisClientOpt{Addr: addr, Password: password})
	return &Dispatcher{client: c, timeout: timeout}
}

// RunTaskID names the run of one session generation. Asynq refuses a second
// task with the same id, so a generation is never run twice.
func RunTaskID(id uuid.UUID, generation int) string {
	return fmt.Sprintf("run:%s:%d", id, generation)
}

func (d *Dispatcher) EnqueueRunSession(ctx context.Context, id uuid.UUID, generation int) error {
	t, err := NewRunSessionTask(id.String(), asynq.MaxRetry(0), asynq.Timeout(d.timeout), asynq.TaskID(RunTaskID(id, generation)))
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, t)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Warnf(ctx, "⚠️  run of session #%s generation %d is already enqueued", id, generation)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "enqueued task %s for session #%s on queue %q", info.ID, id, info.Queue)
	return nil
}

func (d *Dispatcher) Close() error {
	return d.client.Close()
}
