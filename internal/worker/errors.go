package worker

import (
	"fmt"
)

type ErrWorkerNotFound struct {
	error
	Service string
}

func NewErrWorkerNotFound(service string) *ErrWorkerNotFound {
	return &ErrWorkerNotFound{
		error:   fmt.Errorf("worker for service %q not found", service),
		Service: service,
	}
}

type ErrWorkerNotReady struct {
	error
	Name  string
	State string
}

func NewErrWorkerNotReady(name, state string) *ErrWorkerNotReady {
	return &ErrWorkerNotReady{
		error: fmt.Errorf("worker %q is not running (state: %s)", name, state),
		Name:  name,
		State: state,
	}
}

// ErrDispatch reports a target that could not be reached to start an invocation.
type ErrDispatch struct {
	error
}

func NewErrDispatch(target string, cause error) *ErrDispatch {
	return &ErrDispatch{fmt.Errorf("failed to start invocation on worker %q: %w", target, cause)}
}

func (e *ErrDispatch) Unwrap() error {
	return e.error
}
