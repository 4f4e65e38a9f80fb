package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/worktracker/internal/model"
	"github.com/sakif/worktracker/internal/repository"
)

// compile-time check that *DB implements repository.AdjustmentRepository
var _ repository.AdjustmentRepository = (*DB)(nil)

// Upsert inserts or replaces the (user, day) adjustment row.
//
// ON CONFLICT DO UPDATE (rather than INSERT OR REPLACE) keeps the original
// row in place and rewrites its payload, which preserves rowids and plays
// nicely with the composite primary key.
func (db *DB) Upsert(ctx context.Context, adj *model.DayAdjustment) error {
	adj.UpdatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO day_adjustments (user_id, day_date, day_type, permission_minutes, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, day_date)
		 DO UPDATE SET
		   day_type = excluded.day_type,
		   permission_minutes = excluded.permission_minutes,
		   updated_at = excluded.updated_at`,
		adj.UserID,
		adj.DayDate,
		string(adj.DayType),
		adj.PermissionMinutes,
		formatTime(adj.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting day adjustment %s: %w", adj.DayDate, err)
	}

	return nil
}

// ListAdjustments returns the user's adjustments with fromDay <= day_date
// < toDay, ascending. Day dates are YYYY-MM-DD strings, so the comparison
// is plain string ordering.
func (db *DB) ListAdjustments(ctx context.Context, userID, fromDay, toDay string) ([]model.DayAdjustment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, day_date, day_type, permission_minutes, updated_at
		 FROM day_adjustments
		 WHERE user_id = ? AND day_date >= ? AND day_date < ?
		 ORDER BY day_date ASC`,
		userID, fromDay, toDay,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing day adjustments: %w", err)
	}
	defer rows.Close()

	adjustments := []model.DayAdjustment{}
	for rows.Next() {
		var (
			a         model.DayAdjustment
			dayType   string
			updatedAt string
		)
		if err := rows.Scan(&a.UserID, &a.DayDate, &dayType, &a.PermissionMinutes, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning day adjustment row: %w", err)
		}
		if a.DayType, err = model.ParseDayType(dayType); err != nil {
			return nil, fmt.Errorf("sqlite: day adjustment %s: %w", a.DayDate, err)
		}
		if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating day adjustments: %w", err)
	}

	return adjustments, nil
}

// ResetDay wipes one calendar day: every entry starting within
// [dayStart, dayEnd) and the day's adjustment row, in a single
// transaction. A reader can never observe the day half-deleted — the
// orphaned-adjustment state simply doesn't exist.
func (db *DB) ResetDay(ctx context.Context, userID, dayDate string, dayStart, dayEnd time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning day reset: %w", err)
	}
	// Rollback is a no-op after Commit; deferring it covers every early
	// return below.
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM work_entries
		 WHERE user_id = ? AND start_at >= ? AND start_at < ?`,
		userID,
		formatTime(dayStart),
		formatTime(dayEnd),
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting entries for day %s: %w", dayDate, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM day_adjustments WHERE user_id = ? AND day_date = ?`,
		userID, dayDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting adjustment for day %s: %w", dayDate, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing day reset: %w", err)
	}

	return nil
}
