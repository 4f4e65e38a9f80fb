package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/worktracker/internal/apperror"
	"github.com/sakif/worktracker/internal/model"
	"github.com/sakif/worktracker/internal/repository"
)

// compile-time check that *DB implements repository.EntryRepository
var _ repository.EntryRepository = (*DB)(nil)

const entryColumns = `id, user_id, start_at, end_at, created_at, updated_at`

// Create inserts a new work entry. ID and created/updated timestamps are
// generated here; StartAt (and EndAt, for manual entries) come from the
// caller.
func (db *DB) Create(ctx context.Context, entry *model.WorkEntry) error {
	entry.ID = xid.New().String()
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO work_entries (id, user_id, start_at, end_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		formatTime(entry.StartAt),
		nullableTime(entry.EndAt),
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting work entry: %w", err)
	}

	return nil
}

// GetByID retrieves one entry, scoped to its owner.
// Returns apperror.ErrNotFound if the entry doesn't exist or belongs to
// another user — callers cannot distinguish the two, deliberately.
func (db *DB) GetByID(ctx context.Context, userID, id string) (*model.WorkEntry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM work_entries WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("work entry", id)
		}
		return nil, fmt.Errorf("sqlite: getting work entry %s: %w", id, err)
	}
	return entry, nil
}

// GetActive returns the user's in-progress entry (NULL end_at), or
// (nil, nil) when there is none. "No active timer" is a normal state, not
// an error, so it does not map to NotFound.
func (db *DB) GetActive(ctx context.Context, userID string) (*model.WorkEntry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+entryColumns+`
		 FROM work_entries
		 WHERE user_id = ? AND end_at IS NULL
		 ORDER BY start_at DESC
		 LIMIT 1`,
		userID,
	)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting active entry: %w", err)
	}
	return entry, nil
}

// ListRange returns the user's entries intersecting [from, to), ascending
// by start. An open entry intersects any range after its start.
func (db *DB) ListRange(ctx context.Context, userID string, from, to time.Time) ([]model.WorkEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+entryColumns+`
		 FROM work_entries
		 WHERE user_id = ?
		   AND start_at < ?
		   AND (end_at IS NULL OR end_at >= ?)
		 ORDER BY start_at ASC`,
		userID,
		formatTime(to),
		formatTime(from),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing work entries: %w", err)
	}
	defer rows.Close()

	entries := []model.WorkEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning work entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating work entries: %w", err)
	}

	return entries, nil
}

// Update rewrites an entry's interval (stop and edit both land here),
// scoped to the owner. Returns NotFound when nothing matched.
func (db *DB) Update(ctx context.Context, entry *model.WorkEntry) error {
	entry.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE work_entries
		 SET start_at = ?, end_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		formatTime(entry.StartAt),
		nullableTime(entry.EndAt),
		formatTime(entry.UpdatedAt),
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating work entry %s: %w", entry.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("work entry", entry.ID)
	}

	return nil
}

// HasOverlap reports whether any of the user's entries other than
// excludeID overlaps [start, end). COALESCE substitutes the far-future
// sentinel for open entries, so an in-progress entry blocks everything
// after its start. Pass excludeID="" for inserts.
func (db *DB) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	var id string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id
		 FROM work_entries
		 WHERE user_id = ?
		   AND id != ?
		   AND start_at < ?
		   AND COALESCE(end_at, ?) > ?
		 LIMIT 1`,
		userID,
		excludeID,
		formatTime(end),
		farFutureText,
		formatTime(start),
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: checking entry overlap: %w", err)
	}
	return true, nil
}

// nullableTime encodes an optional instant for a nullable TEXT column.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// scanEntry reads one work_entries row. It takes the Scan function rather
// than a concrete row type so sql.Row and sql.Rows share the code path.
func scanEntry(scan func(dest ...any) error) (*model.WorkEntry, error) {
	var (
		e                  model.WorkEntry
		startAt            string
		endAt              sql.NullString
		createdAt, updated string
	)

	if err := scan(&e.ID, &e.UserID, &startAt, &endAt, &createdAt, &updated); err != nil {
		return nil, err
	}

	var err error
	if e.StartAt, err = parseTime(startAt); err != nil {
		return nil, err
	}
	if endAt.Valid {
		end, err := parseTime(endAt.String)
		if err != nil {
			return nil, err
		}
		e.EndAt = &end
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &e, nil
}
