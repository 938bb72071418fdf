package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// Clock is a time of day at minute granularity, counted from midnight.
type Clock int

// NewClock validates hour and minute.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %d:%02d", ErrInvalidTime, hour, minute)
	}
	return Clock(hour*minutesPerHour + minute), nil
}

// MustClock is NewClock for constants; it panics on invalid input.
func MustClock(hour, minute int) Clock {
	c, err := NewClock(hour, minute)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClock parses H:MM or HH:MM in 24-hour form.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return NewClock(hour, minute)
}

func (c Clock) Hour() int   { return int(c) / minutesPerHour }
func (c Clock) Minute() int { return int(c) % minutesPerHour }

// Valid reports whether c lies within a day.
func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

// String renders HH:MM.
func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute()) }

// Short renders H:MM without hour padding.
func (c Clock) Short() string { return fmt.Sprintf("%d:%02d", c.Hour(), c.Minute()) }

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
