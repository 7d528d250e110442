package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/events"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/internal/worker"
)

type fakeLocator struct {
	target worker.Target
	err    error
}

func (f *fakeLocator) Resolve(_ context.Context, _ string) (worker.Target, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.target, nil
}

// slowTarget blocks every execution until release is closed.
type slowTarget struct {
	startErr error
	release  chan struct{}
	exitCode int
}

func newSlowTarget() *slowTarget {
	return &slowTarget{release: make(chan struct{})}
}

func (t *slowTarget) ID() string   { return "c0ffee" }
func (t *slowTarget) Name() string { return "whisper_worker-1" }

func (t *slowTarget) Start(_ context.Context, _ []string) (worker.Execution, error) {
	if t.startErr != nil {
		return nil, t.startErr
	}
	return t, nil
}

func (t *slowTarget) Wait(ctx context.Context) (worker.Result, error) {
	select {
	case <-t.release:
		return worker.Result{ExitCode: t.exitCode}, nil
	case <-ctx.Done():
		return worker.Result{}, ctx.Err()
	}
}

type testWriter struct {
	mu     sync.Mutex
	events []events.JobEvent
	kinds  []string
}

func (w *testWriter) WriteJobEvent(_ context.Context, kind string, ev events.JobEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.kinds = append(w.kinds, kind)
	w.events = append(w.events, ev)
	return nil
}

func (w *testWriter) Kinds() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.kinds...)
}

// vanishingStore behaves as if every job directory disappeared while it was listed.
type vanishingStore struct {
	store.Store
}

func (v vanishingStore) Artifact() store.Artifact {
	return vanishingArtifacts{Artifact: v.Store.Artifact()}
}

type vanishingArtifacts struct {
	store.Artifact
}

func (vanishingArtifacts) List(_ context.Context, _ uuid.UUID) ([]model.Artifact, error) {
	return nil, store.ErrJobDirVanished
}
