package config

import (
	"errors"
)

var (
	// ErrInvalidConfig wraps a setting that loaded but cannot run the
	// calendar, such as an empty events_file or a non-positive max_agenda_days.
	ErrInvalidConfig = errors.New("invalid daybook config")

	// ErrLoadConfig wraps a failure to read the YAML file named by
	// DAYBOOK_CONFIG or the DAYBOOK_ environment overrides.
	ErrLoadConfig = errors.New("load daybook config")
)
