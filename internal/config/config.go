// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and DAYBOOK_* environment variables over New().
package config

import "fmt"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EventsFile is read once at startup to hydrate the store.
	EventsFile string `koanf:"events_file"`

	// OutputFile receives the full event list on every save.
	OutputFile string `koanf:"output_file"`

	// ICSFile is the iCalendar export target. Empty disables file export.
	ICSFile string `koanf:"ics_file"`

	// ICSSchedule is a cron spec for periodic iCalendar export. Empty disables it.
	ICSSchedule string `koanf:"ics_schedule"`

	// SaveQueueSize bounds the write-behind save queue.
	SaveQueueSize int `koanf:"save_queue_size"`

	// DedupeSize sets how many create request IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxAgendaDays caps the window of GET /agenda.
	MaxAgendaDays int `koanf:"max_agenda_days"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		EventsFile:    "events.txt",
		OutputFile:    "output.txt",
		ICSFile:       "calendar.ics",
		ICSSchedule:   "@every 5m",
		SaveQueueSize: 64,
		DedupeSize:    10_000,
		MaxAgendaDays: 366,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EventsFile == "":
		return fmt.Errorf("%w: events_file must not be empty", ErrInvalidConfig)
	case c.OutputFile == "":
		return fmt.Errorf("%w: output_file must not be empty", ErrInvalidConfig)
	case c.MaxAgendaDays <= 0:
		return fmt.Errorf("%w: max_agenda_days must be positive", ErrInvalidConfig)
	case c.SaveQueueSize < 0:
		return fmt.Errorf("%w: save_queue_size must not be negative", ErrInvalidConfig)
	}
	return nil
}
