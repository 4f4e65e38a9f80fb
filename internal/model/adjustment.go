package model

import (
	"fmt"
	"time"
)

// DayType tags a calendar day with a whole-day accounting credit.
//
// CLOSED ENUMERATION:
// The set of values is fixed, so we model it as a named string type with
// typed constants instead of passing raw strings around. Anything outside
// the set is rejected at the boundary by ParseDayType — code past the
// boundary can assume a DayType is one of the four constants.
type DayType string

const (
	DayTypeNone  DayType = "none"  // ordinary working day, no credit
	DayTypeSmart DayType = "smart" // remote working, full planned credit
	DayTypeFerie DayType = "ferie" // vacation, full planned credit
	DayTypeFesta DayType = "festa" // public holiday, full planned credit
)

// ParseDayType validates and normalizes a raw day-type string.
// Empty input means "none" (the column default).
func ParseDayType(raw string) (DayType, error) {
	switch dt := DayType(raw); dt {
	case "":
		return DayTypeNone, nil
	case DayTypeNone, DayTypeSmart, DayTypeFerie, DayTypeFesta:
		return dt, nil
	default:
		return "", fmt.Errorf("model: unknown day type %q", raw)
	}
}

// MaxPermissionMinutes caps the per-day permission credit at 12 hours.
const MaxPermissionMinutes = 12 * 60

// DayAdjustment annotates one calendar day of one user with a day type and
// a permission-minutes credit. Keyed by (UserID, DayDate); saved with
// upsert semantics — one row per user per day.
//
// DayDate is a plain "YYYY-MM-DD" string, not a time.Time: it identifies a
// local calendar day, not an instant, and it is compared lexicographically
// in range queries.
type DayAdjustment struct {
	UserID            string    `json:"-"`
	DayDate           string    `json:"dayDate"`
	DayType           DayType   `json:"dayType"`
	PermissionMinutes int       `json:"permissionMinutes"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
