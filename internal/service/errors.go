package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrValidation struct {
	error
	Field string
}

func NewErrValidation(field, message string) *ErrValidation {
	return &ErrValidation{error: fmt.Errorf("invalid %s: %s", field, message), Field: field}
}

// ErrStorage reports local filesystem trouble while accepting a job.
type ErrStorage struct {
	error
}

func NewErrStorage(op string, cause error) *ErrStorage {
	return &ErrStorage{fmt.Errorf("failed to %s: %w", op, cause)}
}

func (e *ErrStorage) Unwrap() error {
	return e.error
}

type ErrResourceNotFound struct {
	error
}

func NewErrJobNotFound(id string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("job %s not found", id)}
}

func NewErrArtifactNotFound(id uuid.UUID, filename string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("artifact %q of job %s not found", filename, id)}
}

type ErrAccessDenied struct {
	error
}

func NewErrAccessDenied(filename string) *ErrAccessDenied {
	return &ErrAccessDenied{fmt.Errorf("access to %q denied", filename)}
}
