package repository

import "github.com/okian/daybook/pkg/logger"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver registers a callback run after each mutation, outside the lock.
func WithObserver(fn Observer) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}
