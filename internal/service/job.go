package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/dispatch"
	"github.com/voxjob/transcriber/internal/events"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/internal/worker"
	"github.com/voxjob/transcriber/pkg/metrics"
)

// Dispatcher starts a worker invocation for an accepted job.
type Dispatcher interface {
	Resolve(ctx context.Context) (worker.Target, error)
	Dispatch(ctx context.Context, target worker.Target, job dispatch.Job) error
}

type EventWriter interface {
	WriteJobEvent(ctx context.Context, kind string, ev events.JobEvent) error
}

type SubmitRequest struct {
	Filename  string
	ModelTier string
	Body      io.Reader
}

type JobInfo struct {
	ID        uuid.UUID
	Filename  string
	ModelTier string
}

type JobService struct {
	store      store.Store
	dispatcher Dispatcher
	events     EventWriter
}

func NewJobService(s store.Store, d Dispatcher, ew EventWriter) *JobService {
	return &JobService{store: s, dispatcher: d, events: ew}
}

// Submit accepts a job and returns once the worker confirmed it can start.
// The worker is resolved before anything is written, so a missing worker
// never leaves an identifier or a directory behind.
func (s *JobService) Submit(ctx context.Context, req SubmitRequest) (*JobInfo, error) {
	logger := zap.S().Named("job_service")

	tier := req.ModelTier
	if tier == "" {
		tier = model.DefaultModelTier
	}
	if !model.IsModelTier(tier) {
		return nil, NewErrValidation("model_size", "must be one of "+strings.Join(model.ModelTiers, ", "))
	}
	if req.Body == nil {
		return nil, NewErrValidation("videoFile", "no file provided")
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, NewErrValidation("videoFile", "no file selected")
	}

	target, err := s.dispatcher.Resolve(ctx)
	if err != nil {
		metrics.IncreaseDispatchFailuresMetric(failureReason(err))
		logger.Errorw("failed to resolve worker", "error", err)
		return nil, err
	}

	id := uuid.New()
	// the result directory only appears once the upload is on disk
	inputPath, err := s.store.Input().Save(ctx, id, req.Filename, req.Body)
	if err != nil {
		if errors.Is(err, store.ErrInvalidFilename) {
			return nil, NewErrValidation("videoFile", err.Error())
		}
		return nil, NewErrStorage("save upload", err)
	}
	filename := filepath.Base(inputPath)

	dir, err := s.store.Job().Create(ctx, id)
	if err != nil {
		return nil, NewErrStorage("create result directory", err)
	}

	if err := s.store.Job().Save(ctx, model.Job{
		ID:         id,
		Filename:   filename,
		ModelTier:  tier,
		InputPath:  inputPath,
		State:      model.JobStateAccepted,
		AcceptedAt: time.Now().UTC(),
	}); err != nil {
		return nil, NewErrStorage("write job descriptor", err)
	}

	if err := s.dispatcher.Dispatch(ctx, target, dispatch.Job{
		ID:        id,
		Filename:  filename,
		InputPath: inputPath,
		ResultDir: dir,
		ModelTier: tier,
	}); err != nil {
		metrics.IncreaseDispatchFailuresMetric(failureReason(err))
		s.markFailed(ctx, id, err)
		logger.Errorw("failed to dispatch job", "job_id", id, "error", err)
		return nil, err
	}

	metrics.IncreaseJobsSubmittedMetric(tier)
	logger.Infow("job accepted", "job_id", id, "filename", filename, "model_size", tier)

	if s.events != nil {
		if err := s.events.WriteJobEvent(ctx, events.JobSubmittedKind, events.JobEvent{
			JobID:     id.String(),
			Filename:  filename,
			ModelTier: tier,
			Worker:    target.Name(),
		}); err != nil {
			logger.Errorw("failed to write event", "error", err, "event_kind", events.JobSubmittedKind)
		}
	}

	return &JobInfo{ID: id, Filename: filename, ModelTier: tier}, nil
}

func (s *JobService) markFailed(ctx context.Context, id uuid.UUID, cause error) {
	now := time.Now().UTC()
	_, err := s.store.Job().Update(ctx, id, func(j *model.Job) {
		if j.State.IsTerminal() {
			return
		}
		j.State = model.JobStateFailed
		j.FinishedAt = &now
		j.Error = cause.Error()
	})
	if err != nil {
		zap.S().Named("job_service").Warnw("failed to record dispatch failure", "job_id", id, "error", err)
	}
}

func failureReason(err error) string {
	var (
		notFound *worker.ErrWorkerNotFound
		notReady *worker.ErrWorkerNotReady
	)
	switch {
	case errors.Is(err, dispatch.ErrPoolSaturated):
		return "queue_full"
	case errors.Is(err, dispatch.ErrPoolStopped):
		return "shutting_down"
	case errors.As(err, &notFound):
		return "worker_not_found"
	case errors.As(err, &notReady):
		return "worker_not_ready"
	default:
		return "unreachable"
	}
}
