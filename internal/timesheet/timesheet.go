// Package timesheet is the time-accounting engine: pure functions over work
// entries and day adjustments. No I/O, no clock reads — every function takes
// its inputs explicitly, which keeps the arithmetic trivially testable and
// reusable from any transport.
package timesheet

import (
	"math"
	"time"

	"github.com/sakif/worktracker/internal/model"
)

// Weekly and daily targets, in minutes.
const (
	// WeekTargetMinutes is the fixed weekly target: 38 hours.
	WeekTargetMinutes = 38 * 60
	// DailyMinimumMinutes is the under-minimum threshold: days with logged
	// activity below 4 hours are flagged (days with zero activity are not).
	DailyMinimumMinutes = 4 * 60
)

// farFuture is the sentinel instant substituted for a nil end when testing
// intervals for overlap: an in-progress entry blocks everything after its
// start. Matches the sentinel used in the repository's overlap SQL.
var farFuture = time.Date(9999, time.December, 31, 23, 59, 59, 999000000, time.UTC)

// DurationMinutes returns the entry duration in whole minutes, or nil while
// the entry is still in progress.
//
// The value is round((end-start)/1m), floored at 0 when end <= start. A
// non-positive span is a defensive clamp, not an error: such rows can only
// exist if the wall clock moved backwards, and rendering them as 0 beats
// refusing to render the week.
func DurationMinutes(start time.Time, end *time.Time) *int {
	if end == nil {
		return nil
	}
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	return &minutes
}

// Overlaps reports whether the half-open interval [candStart, candEnd)
// intersects an existing entry's interval. An entry with a nil end extends
// to the far-future sentinel — it conflicts with anything after its start.
func Overlaps(existingStart time.Time, existingEnd *time.Time, candStart, candEnd time.Time) bool {
	effectiveEnd := farFuture
	if existingEnd != nil {
		effectiveEnd = *existingEnd
	}
	return existingStart.Before(candEnd) && effectiveEnd.After(candStart)
}

// PlannedMinutes returns the planned daily target for a weekday:
// Mon-Thu 8h, Fri 6h, weekend 0. Only business days are ever rendered, but
// the function is total so callers don't need to special-case weekends.
func PlannedMinutes(weekday time.Weekday) int {
	switch weekday {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return 8 * 60
	case time.Friday:
		return 6 * 60
	default:
		return 0
	}
}

// ProjectEntry builds the API projection of an entry, attaching the
// computed duration.
func ProjectEntry(e model.WorkEntry) model.PublicEntry {
	return model.PublicEntry{
		ID:              e.ID,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		DurationMinutes: DurationMinutes(e.StartAt, e.EndAt),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
