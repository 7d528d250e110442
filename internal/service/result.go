package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/store/model"
	"github.com/voxjob/transcriber/pkg/metrics"
)

// Download is an open artifact. The caller closes File.
type Download struct {
	File     *os.File
	Info     fs.FileInfo
	Filename string
}

type ResultService struct {
	store store.Store
}

func NewResultService(s store.Store) *ResultService {
	return &ResultService{store: s}
}

// Open opens an artifact of a job. Names that could leave the job directory
// are refused before the filesystem is touched.
func (s *ResultService) Open(ctx context.Context, jobID, filename string) (*Download, error) {
	if escapes(filename) {
		return nil, NewErrAccessDenied(filename)
	}

	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, NewErrJobNotFound(jobID)
	}
	if filename == "" || strings.HasPrefix(filename, ".") {
		return nil, NewErrArtifactNotFound(id, filename)
	}

	f, info, err := s.store.Artifact().Open(ctx, id, filename)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil, NewErrArtifactNotFound(id, filename)
		case errors.Is(err, store.ErrInvalidFilename):
			return nil, NewErrAccessDenied(filename)
		default:
			return nil, err
		}
	}

	kind := "other"
	if k, ok := model.KindOf(filename); ok {
		kind = string(k)
	}
	metrics.IncreaseArtifactDownloadsMetric(kind)

	return &Download{File: f, Info: info, Filename: info.Name()}, nil
}

// escapes reports names with a parent reference, a separator or a NUL byte.
// Absolute paths always contain a separator.
func escapes(filename string) bool {
	return strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\\x00")
}
