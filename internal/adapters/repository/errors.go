package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrConflict   = errors.New("conflict with existing event")
	ErrNotOneTime = errors.New("event is not a one-time event")
)
