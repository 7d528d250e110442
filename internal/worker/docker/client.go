// Package docker resolves transcription workers among docker containers and
// runs invocations inside them through the exec API.
package docker

import (
	"github.com/docker/docker/client"
)

const (
	ComposeProjectLabel = "com.docker.compose.project"
	ComposeServiceLabel = "com.docker.compose.service"

	stateRunning = "running"
)

// NewClient returns a docker API client configured from the DOCKER_* environment.
func NewClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

func containerName(names []string, id string) string {
	for _, n := range names {
		if n != "" {
			if n[0] == '/' {
				return n[1:]
			}
			return n
		}
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
