package docker

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/voxjob/transcriber/internal/worker"
)

type target struct {
	cli  client.ContainerAPIClient
	id   string
	name string
}

func newTarget(cli client.ContainerAPIClient, id, name string) *target {
	return &target{cli: cli, id: id, name: name}
}

func (t *target) ID() string   { return t.id }
func (t *target) Name() string { return t.name }

// Start creates the exec instance. Docker only runs it once it is attached.
func (t *target) Start(ctx context.Context, cmd []string) (worker.Execution, error) {
	resp, err := t.cli.ContainerExecCreate(ctx, t.id, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	})
	if err != nil {
		return nil, worker.NewErrDispatch(t.name, err)
	}
	return &execution{cli: t.cli, execID: resp.ID, target: t.name}, nil
}

type execution struct {
	cli    client.ContainerAPIClient
	execID string
	target string
}

func (e *execution) Wait(ctx context.Context) (worker.Result, error) {
	start := time.Now()

	hijacked, err := e.cli.ContainerExecAttach(ctx, e.execID, container.ExecAttachOptions{Tty: false})
	if err != nil {
		return worker.Result{}, fmt.Errorf("attaching to exec %s on %s: %w", e.execID, e.target, err)
	}
	defer hijacked.Close()

	// the attached stream ignores ctx once established; closing it unblocks the copy
	stop := context.AfterFunc(ctx, hijacked.Close)
	defer stop()

	var stdout, stderr bytes.Buffer
	_, err = stdcopy.StdCopy(&stdout, &stderr, hijacked.Reader)
	if ctx.Err() != nil {
		return worker.Result{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)},
			fmt.Errorf("waiting for exec %s on %s: %w", e.execID, e.target, ctx.Err())
	}
	if err != nil {
		return worker.Result{}, fmt.Errorf("reading exec output on %s: %w", e.target, err)
	}

	inspect, err := e.cli.ContainerExecInspect(ctx, e.execID)
	if err != nil {
		return worker.Result{}, fmt.Errorf("inspecting exec %s on %s: %w", e.execID, e.target, err)
	}

	return worker.Result{
		ExitCode: inspect.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}, nil
}
