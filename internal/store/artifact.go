package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/voxjob/transcriber/internal/store/model"
)

// Artifact gives read-only access to the worker outputs of a job.
type Artifact interface {
	List(ctx context.Context, id uuid.UUID) ([]model.Artifact, error)
	Open(ctx context.Context, id uuid.UUID, filename string) (*os.File, fs.FileInfo, error)
}

type ArtifactStore struct {
	dirFor func(uuid.UUID) string
}

var _ Artifact = (*ArtifactStore)(nil)

func NewArtifactStore(dirFor func(uuid.UUID) string) Artifact {
	return &ArtifactStore{dirFor: dirFor}
}

// List returns the recognized artifacts currently present, sorted by filename.
// ErrRecordNotFound means the job directory does not exist; ErrJobDirVanished
// means it existed when checked but was gone by the time it was listed.
func (s *ArtifactStore) List(_ context.Context, id uuid.UUID) ([]model.Artifact, error) {
	dir := s.dirFor(id)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("checking job directory: %w", err)
	}
	if !info.IsDir() {
		return nil, ErrInvalidJobDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrJobDirVanished
		}
		return nil, fmt.Errorf("listing job directory: %w", err)
	}

	artifacts := []model.Artifact{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		kind, ok := model.KindOf(e.Name())
		if !ok {
			continue
		}
		a := model.Artifact{Kind: kind, Filename: e.Name()}
		if fi, err := e.Info(); err == nil {
			a.Size = fi.Size()
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}

// Open opens filename inside the job directory. The name must be a bare file
// name; anything else is rejected with ErrInvalidFilename.
func (s *ArtifactStore) Open(_ context.Context, id uuid.UUID, filename string) (*os.File, fs.FileInfo, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) || filename == ".." || filename == "." {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	root, err := os.OpenRoot(s.dirFor(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil, ErrRecordNotFound
		}
		return nil, nil, fmt.Errorf("opening job directory: %w", err)
	}
	defer root.Close()

	f, err := root.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrRecordNotFound
		}
		return nil, nil, fmt.Errorf("opening artifact: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, ErrRecordNotFound
	}
	return f, info, nil
}
