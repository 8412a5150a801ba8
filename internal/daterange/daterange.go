// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package daterange parses and validates the date selections a digest run
// targets on the dashboard.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Callers match with errors.Is; messages carry the
// offending input.
var (
	// ErrInvalidDateFormat is returned when no supported layout matches.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidDateRange is returned when a range ends in the future.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrReversedRange is returned when a range starts after it ends.
	ErrReversedRange = errors.New("start date is after end date")
)

const isoLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Range is an inclusive pair of calendar dates. The zero value is not a
// valid range; construct one with New, Single, or ParseRange.
type Range struct {
	start time.Time
	end   time.Time
}

// New returns the range [start, end], truncated to calendar dates.
func New(start, end time.Time) (Range, error) {
	s, e := dateOf(start), dateOf(end)
	if s.After(e) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrReversedRange, s.Format(isoLayout), e.Format(isoLayout))
	}
	return Range{start: s, end: e}, nil
}

// Single returns the zero-width range covering one day.
func Single(day time.Time) Range {
	d := dateOf(day)
	return Range{start: d, end: d}
}

// Start returns the first day of the range at UTC midnight.
func (r Range) Start() time.Time { return r.start }

// End returns the last day of the range at UTC midnight.
func (r Range) End() time.Time { return r.end }

// IsSingle reports whether the range covers exactly one day.
func (r Range) IsSingle() bool { return r.start.Equal(r.end) }

// Days returns the inclusive span in days. A single date spans 1.
func (r Range) Days() int {
	return int((r.end.Unix()-r.start.Unix())/secondsPerDay) + 1
}

// Dates returns every day in the range in ascending order.
func (r Range) Dates() []time.Time {
	days := make([]time.Time, 0, r.Days())
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r Range) String() string {
	if r.IsSingle() {
		return r.start.Format(isoLayout)
	}
	return r.start.Format(isoLayout) + " to " + r.end.Format(isoLayout)
}

// dateOf drops the clock and location of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
