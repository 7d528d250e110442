package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/pkg/metrics"
)

type Status string

const (
	StatusNotFound Status = "NotFound"
	StatusPending  Status = "Pending"
	StatusDone     Status = "Done"
	// StatusFailed is reported when the descriptor recorded a failed run and
	// the worker left no artifacts.
	StatusFailed Status = "Failed"
	// StatusError is reported when the job directory vanished or is not a directory.
	StatusError Status = "Error"
)

type JobStatus struct {
	JobID  string
	Status Status
	Files  []model.Artifact
	Error  string
}

type StatusService struct {
	store store.Store
}

func NewStatusService(s store.Store) *StatusService {
	return &StatusService{store: s}
}

// Status derives the status of a job from its result directory. Nothing is
// cached: every call looks at the filesystem again.
//
// Done only means that at least one artifact is present. The worker may still
// be writing the others.
func (s *StatusService) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	st, err := s.status(ctx, jobID)
	if err != nil {
		return nil, err
	}
	metrics.IncreaseStatusQueriesMetric(string(st.Status))
	return st, nil
}

func (s *StatusService) status(ctx context.Context, jobID string) (*JobStatus, error) {
	result := &JobStatus{JobID: jobID, Files: []model.Artifact{}}

	id, err := uuid.Parse(jobID)
	if err != nil {
		result.Status = StatusNotFound
		return result, nil
	}

	artifacts, err := s.store.Artifact().List(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrRecordNotFound):
		result.Status = StatusNotFound
		return result, nil
	case errors.Is(err, store.ErrJobDirVanished), errors.Is(err, store.ErrInvalidJobDir):
		zap.S().Named("status_service").Warnw("job directory unusable", "job_id", id, "error", err)
		result.Status = StatusError
		result.Error = err.Error()
		return result, nil
	default:
		return nil, err
	}

	if len(artifacts) > 0 {
		result.Status = StatusDone
		result.Files = artifacts
		return result, nil
	}

	result.Status = StatusPending
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			zap.S().Named("status_service").Warnw("failed to read job descriptor", "job_id", id, "error", err)
		}
		return result, nil
	}
	if job.State == model.JobStateFailed {
		result.Status = StatusFailed
		result.Error = job.Error
	}
	return result, nil
}
