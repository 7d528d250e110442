package dispatch

import "time"

type DispatcherOption func(d *Dispatcher)

// WithService sets the logical service name the worker is resolved by.
func WithService(service string) DispatcherOption {
	return func(d *Dispatcher) {
		if service != "" {
			d.service = service
		}
	}
}

func WithCommand(cmd []string) DispatcherOption {
	return func(d *Dispatcher) {
		if len(cmd) > 0 {
			d.command = cmd
		}
	}
}

func WithInputMapping(m PathMapper) DispatcherOption {
	return func(d *Dispatcher) {
		d.inputs = m
	}
}

func WithResultMapping(m PathMapper) DispatcherOption {
	return func(d *Dispatcher) {
		d.results = m
	}
}

func WithEventWriter(w EventWriter) DispatcherOption {
	return func(d *Dispatcher) {
		d.events = w
	}
}

func WithMirror(m Mirror) DispatcherOption {
	return func(d *Dispatcher) {
		d.mirror = m
	}
}

// WithExecutionTimeout bounds a single invocation. Zero means no bound.
func WithExecutionTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}
