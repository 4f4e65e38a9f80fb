package model

import "time"

// WorkEntry is a single logged work interval for a user.
//
// EndAt is a pointer because an entry can be "in progress": the timer was
// started and not yet stopped. A nil EndAt is the only representation of an
// active entry — there is at most one per user at any time (enforced by the
// timer service and defended again in the repository).
//
// WHY *time.Time AND NOT A ZERO time.Time?
// The zero time.Time is a valid instant (year 1). A pointer makes "absent"
// unambiguous, and it maps directly to the nullable end_at column.
type WorkEntry struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	StartAt   time.Time  `json:"startAt"`
	EndAt     *time.Time `json:"endAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PublicEntry is the API projection of a WorkEntry. It drops the owning
// user ID (entries are only ever returned to their owner) and adds the
// computed duration so clients never re-derive it.
type PublicEntry struct {
	ID              string     `json:"id"`
	StartAt         time.Time  `json:"startAt"`
	EndAt           *time.Time `json:"endAt"`
	DurationMinutes *int       `json:"durationMinutes"` // nil while in progress
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
