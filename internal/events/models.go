package events

import (
	"time"
)

const (
	JobSubmittedKind  string = "transcriber.events.job.submitted"
	JobDispatchedKind string = "transcriber.events.job.dispatched"
	JobSucceededKind  string = "transcriber.events.job.succeeded"
	JobFailedKind     string = "transcriber.events.job.failed"
)

// JobEvent is the payload of every job lifecycle event.
type JobEvent struct {
	JobID     string        `json:"job_id"`
	Filename  string        `json:"filename"`
	ModelTier string        `json:"model_size"`
	Worker    string        `json:"worker,omitempty"`
	ExitCode  *int          `json:"exit_code,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
}
