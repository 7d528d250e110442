package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/store/model"
)

// DescriptorFile is the sidecar written next to the artifacts of a job.
const DescriptorFile = ".job.json"

// Job interface for the job directory and its sidecar descriptor
type Job interface {
	Create(ctx context.Context, id uuid.UUID) (string, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	Save(ctx context.Context, job model.Job) error
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Job)) (*model.Job, error)
}

type JobStore struct {
	dirFor func(uuid.UUID) string
	// serializes read-modify-write of descriptors within this process
	mu sync.Mutex
}

var _ Job = (*JobStore)(nil)

func NewJobStore(dirFor func(uuid.UUID) string) Job {
	return &JobStore{dirFor: dirFor}
}

// Create makes the job directory. An existing directory is not an error.
func (s *JobStore) Create(_ context.Context, id uuid.UUID) (string, error) {
	dir := s.dirFor(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating job directory: %w", err)
	}
	return dir, nil
}

func (s *JobStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	info, err := os.Stat(s.dirFor(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !info.IsDir() {
		return false, ErrInvalidJobDir
	}
	return true, nil
}

// Get reads the sidecar descriptor. Jobs without one return ErrRecordNotFound.
func (s *JobStore) Get(_ context.Context, id uuid.UUID) (*model.Job, error) {
	return s.read(id)
}

func (s *JobStore) Save(_ context.Context, job model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(job)
}

func (s *JobStore) Update(_ context.Context, id uuid.UUID, fn func(*model.Job)) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.read(id)
	if err != nil {
		return nil, err
	}
	fn(job)
	job.ID = id
	if err := s.write(*job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) read(id uuid.UUID) (*model.Job, error) {
	data, err := os.ReadFile(filepath.Join(s.dirFor(id), DescriptorFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("reading job descriptor: %w", err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job descriptor: %w", err)
	}
	return &job, nil
}

// write replaces the descriptor atomically: readers see the old or the new
// content, never a partial file.
func (s *JobStore) write(job model.Job) error {
	dir := s.dirFor(job.ID)
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding job descriptor: %w", err)
	}

	tmp, err := os.CreateTemp(dir, DescriptorFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing job descriptor: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing job descriptor: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing job descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing job descriptor: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, DescriptorFile)); err != nil {
		return fmt.Errorf("replacing job descriptor: %w", err)
	}
	return nil
}
