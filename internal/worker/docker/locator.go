package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/worker"
)

// LabelLocator finds the worker among the containers of a compose project.
type LabelLocator struct {
	cli     client.ContainerAPIClient
	project string
}

var _ worker.Locator = (*LabelLocator)(nil)

func NewLabelLocator(cli client.ContainerAPIClient, project string) *LabelLocator {
	return &LabelLocator{cli: cli, project: project}
}

// Resolve returns the first container labelled with the compose project and service.
// Several matches are tolerated; listing order decides.
func (l *LabelLocator) Resolve(ctx context.Context, service string) (worker.Target, error) {
	args := filters.NewArgs(filters.Arg("label", fmt.Sprintf("%s=%s", ComposeServiceLabel, service)))
	if l.project != "" {
		args.Add("label", fmt.Sprintf("%s=%s", ComposeProjectLabel, l.project))
	}

	containers, err := l.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: args})
	if err != nil {
		return nil, worker.NewErrDispatch(service, fmt.Errorf("listing containers: %w", err))
	}
	if len(containers) == 0 {
		return nil, worker.NewErrWorkerNotFound(service)
	}
	if len(containers) > 1 {
		zap.S().Named("worker_locator").Debugw("several workers matched, using the first one",
			"service", service, "project", l.project, "count", len(containers))
	}

	c := containers[0]
	name := containerName(c.Names, c.ID)
	if state := string(c.State); state != stateRunning {
		return nil, worker.NewErrWorkerNotReady(name, state)
	}

	return newTarget(l.cli, c.ID, name), nil
}

// StaticLocator always resolves the same container, by name or ID.
type StaticLocator struct {
	cli       client.ContainerAPIClient
	container string
}

var _ worker.Locator = (*StaticLocator)(nil)

func NewStaticLocator(cli client.ContainerAPIClient, container string) *StaticLocator {
	return &StaticLocator{cli: cli, container: container}
}

func (l *StaticLocator) Resolve(ctx context.Context, service string) (worker.Target, error) {
	info, err := l.cli.ContainerInspect(ctx, l.container)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, worker.NewErrWorkerNotFound(service)
		}
		return nil, worker.NewErrDispatch(l.container, fmt.Errorf("inspecting container: %w", err))
	}

	if info.ContainerJSONBase == nil {
		return nil, worker.NewErrWorkerNotFound(service)
	}

	name := containerName([]string{info.Name}, info.ID)
	state := "unknown"
	if info.State != nil {
		state = string(info.State.Status)
	}
	if state != stateRunning {
		return nil, worker.NewErrWorkerNotReady(name, state)
	}

	return newTarget(l.cli, info.ID, name), nil
}
