package model

import "fmt"

// TimeRange is a half-open interval [Start, End) within one day.
// NewTimeRange enforces End > Start; a struct literal does not.
type TimeRange struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewTimeRange validates that end is strictly after start.
func NewTimeRange(start, end Clock) (TimeRange, error) {
	if !start.Valid() || !end.Valid() {
		return TimeRange{}, fmt.Errorf("%w: %d-%d", ErrInvalidTime, start, end)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Conflicts reports whether the two ranges overlap. Touching endpoints do not.
func (r TimeRange) Conflicts(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Duration in minutes.
func (r TimeRange) Minutes() int { return int(r.End - r.Start) }

func (r TimeRange) String() string { return r.Start.String() + " - " + r.End.String() }
