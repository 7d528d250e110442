// Package dispatch starts worker invocations for accepted jobs and follows
// them to completion off the request path.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/events"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/internal/worker"
	"github.com/voxjob/transcriber/pkg/metrics"
)

const (
	DefaultService = "whisper_worker"

	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeError     = "error"
)

type EventWriter interface {
	WriteJobEvent(ctx context.Context, kind string, ev events.JobEvent) error
}

// Mirror copies the artifacts of a finished job somewhere else.
type Mirror interface {
	MirrorJob(ctx context.Context, id uuid.UUID, dir string) (int, error)
}

// Job is what the dispatcher needs to know about an accepted job.
// Paths are in the orchestrator namespace.
type Job struct {
	ID        uuid.UUID
	Filename  string
	InputPath string
	ResultDir string
	ModelTier string
}

type Dispatcher struct {
	locator worker.Locator
	pool    *Pool
	jobs    store.Job
	service string
	command []string
	inputs  PathMapper
	results PathMapper
	events  EventWriter
	mirror  Mirror
	timeout time.Duration
}

func NewDispatcher(locator worker.Locator, pool *Pool, jobs store.Job, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		locator: locator,
		pool:    pool,
		jobs:    jobs,
		service: DefaultService,
		command: DefaultCommand,
		inputs:  PathMapper{HostRoot: "/", WorkerRoot: "/"},
		results: PathMapper{HostRoot: "/", WorkerRoot: "/"},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Resolve looks the worker up. Targets are never cached: every submission
// resolves again.
func (d *Dispatcher) Resolve(ctx context.Context) (worker.Target, error) {
	t, err := d.locator.Resolve(ctx, d.service)
	if err != nil {
		return nil, err
	}
	zap.S().Named("dispatcher").Debugw("worker resolved", "service", d.service, "worker", t.Name(), "id", t.ID())
	return t, nil
}

// Dispatch starts the invocation of job on target and returns once the
// target accepted it. The run itself happens on the pool and its outcome is
// only recorded in the job descriptor, the logs and the events.
func (d *Dispatcher) Dispatch(ctx context.Context, target worker.Target, job Job) error {
	logger := zap.S().Named("dispatcher").With("job_id", job.ID, "worker", target.Name())

	input, err := d.inputs.Translate(job.InputPath)
	if err != nil {
		return worker.NewErrDispatch(target.Name(), fmt.Errorf("translating input path: %w", err))
	}
	output, err := d.results.Translate(job.ResultDir)
	if err != nil {
		return worker.NewErrDispatch(target.Name(), fmt.Errorf("translating result directory: %w", err))
	}

	cmd := Invocation{Input: input, ModelTier: job.ModelTier, OutputDir: output}.Args(d.command)
	exec, err := target.Start(ctx, cmd)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := d.jobs.Update(ctx, job.ID, func(j *model.Job) {
		j.State = model.JobStateDispatched
		j.Worker = target.Name()
		j.DispatchedAt = &now
	}); err != nil {
		logger.Warnw("failed to record dispatch", "error", err)
	}

	if err := d.pool.Submit(func(poolCtx context.Context) {
		d.run(poolCtx, job, target.Name(), exec)
	}); err != nil {
		d.finish(context.Background(), job, target.Name(), nil, err)
		return worker.NewErrDispatch(target.Name(), err)
	}

	logger.Infow("job dispatched", "cmd", cmd)
	d.publish(ctx, events.JobDispatchedKind, events.JobEvent{
		JobID:     job.ID.String(),
		Filename:  job.Filename,
		ModelTier: job.ModelTier,
		Worker:    target.Name(),
	})
	return nil
}

func (d *Dispatcher) run(ctx context.Context, job Job, workerName string, exec worker.Execution) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	logger := zap.S().Named("dispatcher").With("job_id", job.ID, "worker", workerName)

	start := time.Now()
	res, err := exec.Wait(ctx)
	if res.Duration == 0 {
		res.Duration = time.Since(start)
	}

	if err != nil {
		logger.Errorw("worker invocation failed", "error", err, "duration", res.Duration)
	} else {
		if res.Stdout != "" {
			logger.Infow("worker stdout", "exit_code", res.ExitCode, "output", res.Stdout)
		}
		if res.Stderr != "" {
			logger.Errorw("worker stderr", "exit_code", res.ExitCode, "output", res.Stderr)
		}
		logger.Infow("worker invocation finished", "exit_code", res.ExitCode, "duration", res.Duration)
	}

	// the pool context may already be cancelled; the descriptor is still written
	d.finish(context.Background(), job, workerName, &res, err)

	if err == nil && res.Succeeded() && d.mirror != nil {
		n, err := d.mirror.MirrorJob(context.Background(), job.ID, job.ResultDir)
		if err != nil {
			logger.Errorw("failed to mirror artifacts", "error", err)
			return
		}
		logger.Infow("artifacts mirrored", "count", n)
	}
}

// finish records the terminal state of a job. res is nil when the job never ran.
func (d *Dispatcher) finish(ctx context.Context, job Job, workerName string, res *worker.Result, runErr error) {
	outcome := outcomeSucceeded
	ev := events.JobEvent{
		JobID:     job.ID.String(),
		Filename:  job.Filename,
		ModelTier: job.ModelTier,
		Worker:    workerName,
	}

	var message string
	switch {
	case runErr != nil:
		outcome = outcomeError
		message = runErr.Error()
	case res != nil && !res.Succeeded():
		outcome = outcomeFailed
		message = fmt.Sprintf("worker exited with code %d", res.ExitCode)
	}
	if res != nil {
		ev.Duration = res.Duration
		if runErr == nil {
			code := res.ExitCode
			ev.ExitCode = &code
		}
	}
	ev.Error = message

	now := time.Now().UTC()
	if _, err := d.jobs.Update(ctx, job.ID, func(j *model.Job) {
		j.FinishedAt = &now
		j.ExitCode = ev.ExitCode
		j.Error = message
		j.State = model.JobStateSucceeded
		if message != "" {
			j.State = model.JobStateFailed
		}
	}); err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		zap.S().Named("dispatcher").Warnw("failed to record job outcome", "job_id", job.ID, "error", err)
	}

	if res == nil {
		return
	}
	metrics.ObserveExecution(outcome, res.Duration.Seconds())

	kind := events.JobSucceededKind
	if message != "" {
		kind = events.JobFailedKind
	}
	d.publish(ctx, kind, ev)
}

func (d *Dispatcher) publish(ctx context.Context, kind string, ev events.JobEvent) {
	if d.events == nil {
		return
	}
	if err := d.events.WriteJobEvent(ctx, kind, ev); err != nil {
		zap.S().Named("dispatcher").Errorw("failed to write event", "error", err, "event_kind", kind)
	}
}
