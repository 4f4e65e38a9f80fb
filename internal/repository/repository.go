// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the production implementation;
// tests substitute hand-written fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/worktracker/internal/model"
)

// UserRepository stores user accounts. Emails are stored normalized and
// unique; CreateUser returns apperror.ErrConflict on a duplicate.
//
// Method names carry the User suffix/prefix because the sqlite DB type
// implements every repository interface here on one receiver — the entry
// methods own the short names.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// EntryRepository stores work entries. Every method is scoped to a user —
// an entry is only ever visible to its owner.
type EntryRepository interface {
	Create(ctx context.Context, entry *model.WorkEntry) error
	GetByID(ctx context.Context, userID, id string) (*model.WorkEntry, error)
	// GetActive returns the user's in-progress entry (nil end), or
	// (nil, nil) when there is none.
	GetActive(ctx context.Context, userID string) (*model.WorkEntry, error)
	// ListRange returns entries intersecting [from, to), ascending by start.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.WorkEntry, error)
	Update(ctx context.Context, entry *model.WorkEntry) error
	// HasOverlap reports whether any entry of the user other than excludeID
	// overlaps [start, end). Open-ended entries count as extending to the
	// far-future sentinel.
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
}

// AdjustmentRepository stores per-day adjustments and owns the day-level
// reset: deleting a day's entries and its adjustment row atomically.
type AdjustmentRepository interface {
	// Upsert inserts or replaces the (user, day) adjustment row.
	Upsert(ctx context.Context, adj *model.DayAdjustment) error
	// ListAdjustments returns adjustments with fromDay <= dayDate < toDay,
	// ascending by day.
	ListAdjustments(ctx context.Context, userID, fromDay, toDay string) ([]model.DayAdjustment, error)
	// ResetDay deletes, in one transaction, all entries starting within
	// [dayStart, dayEnd) and the adjustment row for dayDate. Both deletions
	// commit or neither does.
	ResetDay(ctx context.Context, userID, dayDate string, dayStart, dayEnd time.Time) error
}
