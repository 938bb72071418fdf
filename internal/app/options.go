package service

import (
	"time"

	"github.com/okian/daybook/internal/adapters/repository"
	"github.com/okian/daybook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the default in-memory store. The caller should register
// Service.Changed as a store observer so mutations are persisted.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEventsFile sets the file loaded on start. Empty skips loading.
func WithEventsFile(path string) Option {
	return func(s *Service) { s.eventsFile = path }
}

// WithOutputFile sets the save target. Empty disables saving.
func WithOutputFile(path string) Option {
	return func(s *Service) { s.outputFile = path }
}

// WithICSFile sets the iCalendar export target. Empty disables the export.
func WithICSFile(path string) Option {
	return func(s *Service) { s.icsFile = path }
}

// WithICSSchedule sets the cron spec of the periodic export. Empty disables it.
func WithICSSchedule(spec string) Option {
	return func(s *Service) { s.icsSchedule = spec }
}

// WithSaveQueueSize sets the capacity of the save request queue.
func WithSaveQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.saveQueueSize = size
		}
	}
}

// WithDedupeSize sets how many request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxAgendaDays caps the agenda window.
func WithMaxAgendaDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.maxAgendaDays = days
		}
	}
}

// WithNow overrides the clock used for export stamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
