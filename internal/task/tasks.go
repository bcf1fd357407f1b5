package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TypeRunSession = "session:run"

type RunSessionPayload struct {
	SessionID string `json:"session_id"`
}

// NewRunSessionTask creates an Asynq task driving a submitted session through
// the pipeline.
func NewRunSessionTask(sessionID string, opts ...asynq.Option) (*asynq.Task, error) {
	p := RunSessionPayload{SessionID: sessionID}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal run-session payload: %w", err)
	}
	return asynq.NewTask(TypeRunSession, data, opts...), nil
}

// ParseRunSessionPayload parses the task payload to RunSessionPayload.
func ParseRunSessionPayload(t *asynq.Task) (RunSessionPayload, error) {
	var p RunSessionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return RunSessionPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}
