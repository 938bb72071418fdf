package worker

import (
	"github.com/okian/daybook/pkg/logger"
)

// Option applies a configuration option to the Saver.
type Option func(*Saver)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Saver) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Saver) {
		if l != nil {
			w.logger = l
		}
	}
}
