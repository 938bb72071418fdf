package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time")
	ErrInvalidRange = errors.New("end must be after start")
	ErrInvalidDays  = errors.New("invalid days")
)
