package model

import (
	"fmt"
	"strings"
	"time"
)

// DaySet is an immutable set of weekdays, one bit per day.
type DaySet uint8

const allDays DaySet = 1<<7 - 1

// dayLetters maps time.Weekday (Sunday=0) to its single-letter code.
const dayLetters = "SMTWRFA"

// NewDaySet returns a set containing days.
func NewDaySet(days ...time.Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// ParseDays parses letter codes such as "MWF" or "TR".
func ParseDays(s string) (DaySet, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDays)
	}
	var set DaySet
	for _, r := range s {
		i := strings.IndexRune(dayLetters, r)
		if i < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDays, s)
		}
		set = set.With(time.Weekday(i))
	}
	return set, nil
}

// IsDayCode reports whether s is made only of day letters.
func IsDayCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(dayLetters, r) {
			return false
		}
	}
	return true
}

func (s DaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

// With returns a copy of s that also contains d.
func (s DaySet) With(d time.Weekday) DaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return (s | 1<<uint(d)) & allDays
}

func (s DaySet) Empty() bool { return s&allDays == 0 }

func (s DaySet) Len() int {
	n := 0
	for v := s & allDays; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Days lists the members Sunday first.
func (s DaySet) Days() []time.Weekday {
	out := make([]time.Weekday, 0, s.Len())
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// String renders the letter codes Sunday first, e.g. "MWF".
func (s DaySet) String() string {
	var b strings.Builder
	for _, d := range s.Days() {
		b.WriteByte(dayLetters[d])
	}
	return b.String()
}
