package domain

import (
	"errors"
	"time"
)

var ErrEmptyRange = errors.New("end time must be after start time")

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange normalises both bounds to UTC and rejects end <= start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start.UTC(), End: end.UTC()}
	if !r.End.After(r.Start) {
		return r, ErrEmptyRange
	}
	return r, nil
}

func (r TimeRange) Duration() time.Duration { return r.End.Sub(r.Start) }

// Overlaps reports whether r and o share any instant. Touching ranges
// (r.End == o.Start) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// Contains reports whether t lies inside the closed range [Start, End].
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
