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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The caller provides Name, Email (already
// normalized), and PasswordHash; ID and CreatedAt are generated here.
//
// The unique index on email is the last line of defense against duplicate
// registration: the service checks first, but two concurrent registrations
// of the same email can both pass that check, and only one will survive
// the INSERT. The constraint violation is translated to the same Conflict
// error the pre-check produces.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		formatTime(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email is already registered")
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by normalized email.
// Returns apperror.ErrNotFound if no account exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE email = ?`,
		email,
	), email)
}

// GetUserByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no account exists.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE id = ?`,
		id,
	), id)
}

func (db *DB) scanUser(row *sql.Row, key string) (*model.User, error) {
	var (
		u         model.User
		createdAt string
	)

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", key, err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &u, nil
}
