// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Identity is first-party email/password. The email is stored normalized
// (trimmed, lowercased) and carries a UNIQUE constraint in the database —
// it is the login key. PasswordHash is the bcrypt hash of the password and
// must never leave the server: every API response goes through Public().
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection of User returned by the API.
//
// A separate type (rather than relying on the `json:"-"` tag alone) means a
// handler cannot accidentally leak a sensitive field added to User later.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the API-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
