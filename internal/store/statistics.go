package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/store/model"
)

// Statistics walks the results root once. Entries that are not job
// directories are ignored, as are jobs removed while walking.
func (s *DataStore) Statistics(ctx context.Context) (model.JobStats, error) {
	var stats model.JobStats

	entries, err := os.ReadDir(s.resultsRoot)
	if err != nil {
		return stats, fmt.Errorf("listing results root: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := uuid.Parse(e.Name())
		if err != nil {
			continue
		}

		artifacts, err := s.artifact.List(ctx, id)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrJobDirVanished) {
				continue
			}
			return stats, err
		}

		stats.Total++
		if len(artifacts) > 0 {
			stats.Done++
			continue
		}
		if job, err := s.job.Get(ctx, id); err == nil && job.State == model.JobStateFailed {
			stats.Failed++
			continue
		}
		stats.Pending++
	}
	return stats, nil
}
