package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/worktracker/internal/apperror"
	"github.com/sakif/worktracker/internal/model"
	"github.com/sakif/worktracker/internal/repository"
	"github.com/sakif/worktracker/internal/timesheet"
)

// MaxRangeDays caps how wide an entries/adjustments query range may be.
// The weekly UI never needs more than a week; 31 days leaves room for a
// monthly view without letting a client ask for the whole table.
const MaxRangeDays = 31

const dayLayout = "2006-01-02"

// TimerService owns the work-tracking business logic: the running timer,
// manual entry CRUD with overlap validation, day adjustments, the atomic
// day reset, and the weekly summary.
//
// loc is the location used to bucket instants into calendar days; the
// server runs with time.Local, tests may pin a zone.
type TimerService struct {
	entries     repository.EntryRepository
	adjustments repository.AdjustmentRepository
	loc         *time.Location
	logger      *slog.Logger
}

// NewTimerService creates a TimerService. A nil loc selects time.Local.
func NewTimerService(
	entries repository.EntryRepository,
	adjustments repository.AdjustmentRepository,
	loc *time.Location,
	logger *slog.Logger,
) *TimerService {
	if loc == nil {
		loc = time.Local
	}
	return &TimerService{
		entries:     entries,
		adjustments: adjustments,
		loc:         loc,
		logger:      logger,
	}
}

// Status returns the user's in-progress entry, or nil when no timer runs.
func (s *TimerService) Status(ctx context.Context, userID string) (*model.PublicEntry, error) {
	active, err := s.entries.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/timer: getting active entry: %w", err)
	}
	if active == nil {
		return nil, nil
	}
	entry := timesheet.ProjectEntry(*active)
	return &entry, nil
}

// Start opens a new entry at the current instant. At most one entry per
// user may be open: a second Start while one runs is a Conflict.
func (s *TimerService) Start(ctx context.Context, userID string) (*model.PublicEntry, error) {
	active, err := s.entries.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/timer: getting active entry: %w", err)
	}
	if active != nil {
		return nil, apperror.Conflict("a timer is already running")
	}

	entry := &model.WorkEntry{
		UserID:  userID,
		StartAt: time.Now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("service/timer: starting timer: %w", err)
	}

	s.logger.Info("timer started",
		slog.String("userID", userID),
		slog.String("entryID", entry.ID),
	)

	public := timesheet.ProjectEntry(*entry)
	return &public, nil
}

// Stop closes the user's open entry at the current instant. No open entry
// is a Conflict; a computed end at or before the start (the wall clock
// moved backwards past the start) is rejected rather than stored.
func (s *TimerService) Stop(ctx context.Context, userID string) (*model.PublicEntry, error) {
	active, err := s.entries.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/timer: getting active entry: %w", err)
	}
	if active == nil {
		return nil, apperror.Conflict("no active timer to stop")
	}

	end := time.Now()
	if !end.After(active.StartAt) {
		return nil, apperror.ValidationFailed("endAt", "computed end time is not after the start")
	}

	active.EndAt = &end
	if err := s.entries.Update(ctx, active); err != nil {
		return nil, fmt.Errorf("service/timer: stopping timer: %w", err)
	}

	s.logger.Info("timer stopped",
		slog.String("userID", userID),
		slog.String("entryID", active.ID),
	)

	public := timesheet.ProjectEntry(*active)
	return &public, nil
}

// ListEntries returns the user's entries intersecting [from, to),
// ascending by start. The range must be ordered and span at most
// MaxRangeDays.
func (s *TimerService) ListEntries(ctx context.Context, userID string, from, to time.Time) ([]model.PublicEntry, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	entries, err := s.entries.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service/timer: listing entries: %w", err)
	}

	public := make([]model.PublicEntry, 0, len(entries))
	for _, e := range entries {
		public = append(public, timesheet.ProjectEntry(e))
	}
	return public, nil
}

// CreateEntry inserts a manual, closed entry. The interval must be
// ordered and must not overlap any existing entry of the user.
func (s *TimerService) CreateEntry(ctx context.Context, userID string, start, end time.Time) (*model.PublicEntry, error) {
	if !end.After(start) {
		return nil, apperror.ValidationFailed("endAt", "endAt must be after startAt")
	}

	overlap, err := s.entries.HasOverlap(ctx, userID, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("service/timer: checking overlap: %w", err)
	}
	if overlap {
		return nil, apperror.Conflict("interval overlaps an existing entry")
	}

	entry := &model.WorkEntry{
		UserID:  userID,
		StartAt: start,
		EndAt:   &end,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("service/timer: creating entry: %w", err)
	}

	s.logger.Info("manual entry created",
		slog.String("userID", userID),
		slog.String("entryID", entry.ID),
	)

	public := timesheet.ProjectEntry(*entry)
	return &public, nil
}

// UpdateEntry rewrites an existing entry's interval, with the same
// ordering and overlap rules as CreateEntry (the entry itself is excluded
// from the overlap check).
func (s *TimerService) UpdateEntry(ctx context.Context, userID, entryID string, start, end time.Time) (*model.PublicEntry, error) {
	if !end.After(start) {
		return nil, apperror.ValidationFailed("endAt", "endAt must be after startAt")
	}

	entry, err := s.entries.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	overlap, err := s.entries.HasOverlap(ctx, userID, start, end, entryID)
	if err != nil {
		return nil, fmt.Errorf("service/timer: checking overlap: %w", err)
	}
	if overlap {
		return nil, apperror.Conflict("interval overlaps an existing entry")
	}

	entry.StartAt = start
	entry.EndAt = &end
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("service/timer: updating entry %s: %w", entryID, err)
	}

	s.logger.Info("entry updated",
		slog.String("userID", userID),
		slog.String("entryID", entryID),
	)

	public := timesheet.ProjectEntry(*entry)
	return &public, nil
}

// ListAdjustments returns the user's day adjustments for the calendar days
// covered by [from, to), subject to the same range limits as entries.
func (s *TimerService) ListAdjustments(ctx context.Context, userID string, from, to time.Time) ([]model.DayAdjustment, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	fromDay := from.In(s.loc).Format(dayLayout)
	toDay := to.In(s.loc).Format(dayLayout)

	adjustments, err := s.adjustments.ListAdjustments(ctx, userID, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("service/timer: listing adjustments: %w", err)
	}
	return adjustments, nil
}

// SaveAdjustment upserts the (user, day) adjustment. The day type must be
// one of the closed enum values and the permission minutes within
// [0, model.MaxPermissionMinutes].
func (s *TimerService) SaveAdjustment(ctx context.Context, userID, dayDate, dayTypeRaw string, permissionMinutes int) (*model.DayAdjustment, error) {
	if _, err := s.parseDay(dayDate); err != nil {
		return nil, err
	}

	dayType, err := model.ParseDayType(dayTypeRaw)
	if err != nil {
		return nil, apperror.ValidationFailed("dayType", "dayType must be one of none, smart, ferie, festa")
	}
	if permissionMinutes < 0 || permissionMinutes > model.MaxPermissionMinutes {
		return nil, apperror.ValidationFailed("permissionMinutes",
			fmt.Sprintf("permissionMinutes must be between 0 and %d", model.MaxPermissionMinutes))
	}

	adj := &model.DayAdjustment{
		UserID:            userID,
		DayDate:           dayDate,
		DayType:           dayType,
		PermissionMinutes: permissionMinutes,
	}
	if err := s.adjustments.Upsert(ctx, adj); err != nil {
		return nil, fmt.Errorf("service/timer: saving adjustment %s: %w", dayDate, err)
	}

	s.logger.Info("day adjustment saved",
		slog.String("userID", userID),
		slog.String("dayDate", dayDate),
		slog.String("dayType", string(dayType)),
	)

	return adj, nil
}

// ResetDay deletes every entry starting on the given local calendar day
// together with the day's adjustment row. The repository runs both
// deletions in one transaction.
func (s *TimerService) ResetDay(ctx context.Context, userID, dayDate string) error {
	dayStart, err := s.parseDay(dayDate)
	if err != nil {
		return err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	if err := s.adjustments.ResetDay(ctx, userID, dayDate, dayStart, dayEnd); err != nil {
		return fmt.Errorf("service/timer: resetting day %s: %w", dayDate, err)
	}

	s.logger.Info("day reset",
		slog.String("userID", userID),
		slog.String("dayDate", dayDate),
	)

	return nil
}

// WeekSummary aggregates the week containing startDay (any day; normalized
// to its Monday; empty selects the current week) into the five business-day
// summaries plus weekly totals.
func (s *TimerService) WeekSummary(ctx context.Context, userID, startDay string) (*timesheet.Week, error) {
	var anchor time.Time
	if startDay == "" {
		anchor = time.Now().In(s.loc)
	} else {
		var err error
		if anchor, err = s.parseDay(startDay); err != nil {
			return nil, err
		}
	}

	weekStart := timesheet.StartOfWeek(anchor, s.loc)
	weekEnd := weekStart.AddDate(0, 0, 5) // business days only

	entries, err := s.entries.ListRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("service/timer: listing week entries: %w", err)
	}
	adjustments, err := s.adjustments.ListAdjustments(ctx, userID,
		weekStart.Format(dayLayout), weekEnd.Format(dayLayout))
	if err != nil {
		return nil, fmt.Errorf("service/timer: listing week adjustments: %w", err)
	}

	week := timesheet.BuildWeek(weekStart, entries, adjustments, s.loc)
	return &week, nil
}

// parseDay validates a YYYY-MM-DD day string and returns the local
// midnight opening that day. Re-formatting catches shorthand like
// "2025-2-3" that time.Parse would otherwise accept.
func (s *TimerService) parseDay(dayDate string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, dayDate, s.loc)
	if err != nil || t.Format(dayLayout) != dayDate {
		return time.Time{}, apperror.ValidationFailed("dayDate", "dayDate must be a valid YYYY-MM-DD date")
	}
	return t, nil
}

// validateRange enforces ordered, bounded query ranges.
func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return apperror.ValidationFailed("range", "from must be before to")
	}
	if to.Sub(from) > MaxRangeDays*24*time.Hour {
		return apperror.ValidationFailed("range",
			fmt.Sprintf("range must not exceed %d days", MaxRangeDays))
	}
	return nil
}
