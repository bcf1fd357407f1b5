package session

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("session: invalid input")
	ErrFileTooLarge = errors.New("session: file too large")
	ErrEmptyFile    = errors.New("session: empty file")
	// ErrPipelineStart means the session was submitted but the run task could
	// not be enqueued. The session is failed.
	ErrPipelineStart = errors.New("session: could not start pipeline")
)

const (
	DefaultMaxUploadBytes int64 = 10 << 30 // 10 GB
	DefaultPollInterval         = 5 * time.Second
	DefaultViewTTL              = 5 * time.Second

	pipelineStartFailedMessage = "Could not start processing."
	pipelineTimedOutMessage    = "Processing timed out."
	pipelineInterruptedMessage = "Processing was interrupted."
)

// Config carries the tunables shared by the session use cases.
type Config struct {
	ExplorerBaseURL string
	MaxUploadBytes  int64
	PollInterval    time.Duration
	// ProgressEvery is the minimum delay between two persisted upload
	// progress updates. Zero persists every percent change.
	ProgressEvery time.Duration
	SessionTTL    time.Duration
	ViewTTL       time.Duration
	Now           func() time.Time
}

func (c Config) withDefaults() Config {
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ViewTTL <= 0 {
		c.ViewTTL = DefaultViewTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
