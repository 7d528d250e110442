// Package worker abstracts the external execution unit that runs the
// transcription capability. A Locator finds a Target by logical service name;
// the Target prepares an Execution that is later run to completion.
package worker

import (
	"context"
	"time"
)

// Locator resolves a live Target for a logical service name.
// Implementations must be free of side effects and safe to call repeatedly.
type Locator interface {
	Resolve(ctx context.Context, service string) (Target, error)
}

// Target is a resolved execution endpoint shared by every job.
type Target interface {
	ID() string
	Name() string
	// Start confirms the target accepts the invocation and prepares it.
	// The command does not run until Wait is called on the returned Execution.
	Start(ctx context.Context, cmd []string) (Execution, error)
}

// Execution is a prepared invocation on a Target.
type Execution interface {
	// Wait runs the invocation and blocks until it exits.
	Wait(ctx context.Context) (Result, error)
}

// Result is the outcome of a finished invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}
