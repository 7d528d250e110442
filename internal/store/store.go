package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/store/model"
)

// Store is the filesystem-backed job store. The directory tree under the
// results root is the only record of which jobs exist.
type Store interface {
	Job() Job
	Input() Input
	Artifact() Artifact
	JobDir(id uuid.UUID) string
	Statistics(ctx context.Context) (model.JobStats, error)
}

type DataStore struct {
	resultsRoot string
	uploadsRoot string
	job         Job
	input       Input
	artifact    Artifact
}

// NewStore makes sure both roots exist and returns a store rooted at them.
func NewStore(resultsRoot, uploadsRoot string) (Store, error) {
	resultsRoot, err := filepath.Abs(resultsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving results root: %w", err)
	}
	uploadsRoot, err = filepath.Abs(uploadsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving uploads root: %w", err)
	}

	for _, dir := range []string{resultsRoot, uploadsRoot} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	s := &DataStore{resultsRoot: resultsRoot, uploadsRoot: uploadsRoot}
	s.job = NewJobStore(s.JobDir)
	s.input = NewInputStore(uploadsRoot)
	s.artifact = NewArtifactStore(s.JobDir)
	return s, nil
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Input() Input {
	return s.input
}

func (s *DataStore) Artifact() Artifact {
	return s.artifact
}

// JobDir returns the result directory of a job. The id type keeps the path
// inside the results root.
func (s *DataStore) JobDir(id uuid.UUID) string {
	return filepath.Join(s.resultsRoot, id.String())
}
