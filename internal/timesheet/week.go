package timesheet

import (
	"sort"
	"time"

	"github.com/sakif/worktracker/internal/model"
)

// Day is the aggregated view of one business day.
type Day struct {
	DayDate           string              `json:"dayDate"` // YYYY-MM-DD, local calendar
	Weekday           time.Weekday        `json:"weekday"`
	PlannedMinutes    int                 `json:"plannedMinutes"`
	Entries           []model.PublicEntry `json:"entries"`
	WorkedMinutes     int                 `json:"workedMinutes"`
	DayType           model.DayType       `json:"dayType"`
	PermissionMinutes int                 `json:"permissionMinutes"`
	EffectiveMinutes  int                 `json:"effectiveMinutes"`
}

// Week is the aggregated view of one Monday-to-Friday week.
type Week struct {
	WeekStart         string `json:"weekStart"` // Monday, YYYY-MM-DD
	Days              []Day  `json:"days"`      // exactly the 5 business days
	WeekTargetMinutes int    `json:"weekTargetMinutes"`
	WorkedMinutes     int    `json:"workedMinutes"`
	RemainingMinutes  int    `json:"remainingMinutes"`
	UnderMinimumDays  int    `json:"underMinimumDays"`
}

// StartOfWeek returns the Monday 00:00 (in loc) of the week containing t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
}

// BuildDay aggregates one day's entries and its adjustment into effective
// minutes:
//
//	effective = sum(entry durations) + permissionMinutes + dayTypeCredit
//
// The day-type credit is a FULL-DAY credit equal to the day's planned
// target whenever the day type is not "none" — it is granted outright, on
// top of permission minutes and any actually-logged work. A day marked
// ferie where work was also logged therefore counts both. That stacking is
// the established policy, preserved deliberately.
func BuildDay(dayDate string, weekday time.Weekday, entries []model.PublicEntry, adj model.DayAdjustment) Day {
	worked := 0
	for _, e := range entries {
		if e.DurationMinutes != nil {
			worked += *e.DurationMinutes
		}
	}

	planned := PlannedMinutes(weekday)
	credit := 0
	if adj.DayType != model.DayTypeNone {
		credit = planned
	}

	if entries == nil {
		entries = []model.PublicEntry{}
	}
	return Day{
		DayDate:           dayDate,
		Weekday:           weekday,
		PlannedMinutes:    planned,
		Entries:           entries,
		WorkedMinutes:     worked,
		DayType:           adj.DayType,
		PermissionMinutes: adj.PermissionMinutes,
		EffectiveMinutes:  worked + adj.PermissionMinutes + credit,
	}
}

// BuildWeek aggregates a week of entries and adjustments into the five
// business-day summaries plus the weekly totals.
//
// Entries are bucketed by the LOCAL calendar date of their start instant
// (in loc) and ordered ascending by start within each day. Days without an
// adjustment row fall back to the default (none, 0) — the API contract for
// an untouched day.
func BuildWeek(weekStart time.Time, entries []model.WorkEntry, adjustments []model.DayAdjustment, loc *time.Location) Week {
	weekStart = StartOfWeek(weekStart, loc)

	byDate := make(map[string][]model.PublicEntry)
	for _, e := range entries {
		key := e.StartAt.In(loc).Format("2006-01-02")
		byDate[key] = append(byDate[key], ProjectEntry(e))
	}
	for _, day := range byDate {
		sort.Slice(day, func(i, j int) bool { return day[i].StartAt.Before(day[j].StartAt) })
	}

	adjByDate := make(map[string]model.DayAdjustment, len(adjustments))
	for _, a := range adjustments {
		adjByDate[a.DayDate] = a
	}

	week := Week{
		WeekStart:         weekStart.Format("2006-01-02"),
		Days:              make([]Day, 0, 5),
		WeekTargetMinutes: WeekTargetMinutes,
	}

	for i := 0; i < 5; i++ {
		day := weekStart.AddDate(0, 0, i)
		key := day.Format("2006-01-02")

		adj, ok := adjByDate[key]
		if !ok {
			adj = model.DayAdjustment{DayDate: key, DayType: model.DayTypeNone}
		}

		summary := BuildDay(key, day.Weekday(), byDate[key], adj)
		week.Days = append(week.Days, summary)
		week.WorkedMinutes += summary.EffectiveMinutes
		if summary.EffectiveMinutes > 0 && summary.EffectiveMinutes < DailyMinimumMinutes {
			week.UnderMinimumDays++
		}
	}

	if remaining := WeekTargetMinutes - week.WorkedMinutes; remaining > 0 {
		week.RemainingMinutes = remaining
	}

	return week
}
