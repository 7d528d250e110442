package model

import (
	"time"

	"github.com/google/uuid"
)

// JobState is the dispatch state recorded in the job sidecar.
// It never replaces artifact presence as the completion signal.
type JobState string

const (
	JobStateAccepted   JobState = "accepted"
	JobStateDispatched JobState = "dispatched"
	JobStateSucceeded  JobState = "succeeded"
	JobStateFailed     JobState = "failed"
)

func (s JobState) IsTerminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed
}

// Job is the sidecar descriptor kept next to the artifacts of a job.
type Job struct {
	ID           uuid.UUID  `json:"job_id"`
	Filename     string     `json:"filename"`
	ModelTier    string     `json:"model_size"`
	InputPath    string     `json:"input_path"`
	Worker       string     `json:"worker,omitempty"`
	State        JobState   `json:"state"`
	AcceptedAt   time.Time  `json:"accepted_at"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// JobStats summarizes the job directories found under the results root.
type JobStats struct {
	Total   int
	Pending int
	Done    int
	Failed  int
}
