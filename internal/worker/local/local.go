// Package local runs the transcription command as a process on the orchestrator
// host. It is meant for development setups without a container runtime.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/voxjob/transcriber/internal/worker"
)

type Locator struct {
	lookPath func(string) (string, error)
}

var _ worker.Locator = (*Locator)(nil)

func NewLocator() *Locator {
	return &Locator{lookPath: exec.LookPath}
}

// Resolve always succeeds: the host itself is the worker.
func (l *Locator) Resolve(_ context.Context, service string) (worker.Target, error) {
	return &target{service: service, lookPath: l.lookPath}, nil
}

type target struct {
	service  string
	lookPath func(string) (string, error)
}

func (t *target) ID() string   { return "local" }
func (t *target) Name() string { return fmt.Sprintf("local/%s", t.service) }

func (t *target) Start(_ context.Context, cmd []string) (worker.Execution, error) {
	if len(cmd) == 0 {
		return nil, worker.NewErrDispatch(t.Name(), errors.New("empty command"))
	}
	bin, err := t.lookPath(cmd[0])
	if err != nil {
		return nil, worker.NewErrDispatch(t.Name(), err)
	}
	return &execution{bin: bin, args: cmd[1:]}, nil
}

type execution struct {
	bin  string
	args []string
}

func (e *execution) Wait(ctx context.Context) (worker.Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.bin, e.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := worker.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		return result, fmt.Errorf("running %s: %w", e.bin, err)
	}
}
