package dispatch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// PathMapper translates a path under HostRoot on the orchestrator into the
// same path under WorkerRoot inside the worker's filesystem namespace.
type PathMapper struct {
	HostRoot   string
	WorkerRoot string
}

func NewPathMapper(hostRoot, workerRoot string) (PathMapper, error) {
	abs, err := filepath.Abs(hostRoot)
	if err != nil {
		return PathMapper{}, fmt.Errorf("resolving host root %q: %w", hostRoot, err)
	}
	if !path.IsAbs(workerRoot) {
		return PathMapper{}, fmt.Errorf("worker root %q must be absolute", workerRoot)
	}
	return PathMapper{HostRoot: abs, WorkerRoot: path.Clean(workerRoot)}, nil
}

// Translate maps hostPath into the worker namespace. The worker side always
// uses forward slashes.
func (m PathMapper) Translate(hostPath string) (string, error) {
	abs, err := filepath.Abs(hostPath)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.HostRoot, abs)
	if err != nil {
		return "", fmt.Errorf("path %q is outside %q: %w", hostPath, m.HostRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside %q", hostPath, m.HostRoot)
	}
	return path.Join(m.WorkerRoot, filepath.ToSlash(rel)), nil
}
