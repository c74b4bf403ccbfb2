package engine

import (
	"fmt"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// StoredBirthday is a raw persisted row: a user and a calendar date,
// before any membership data has been joined in.
type StoredBirthday struct {
	UserID uint64
	Month  int
	Day    int

	// Timezone is the optional label the user registered with. It is carried
	// through to exports but never interpreted: the aggregation window is
	// deliberately UTC-based.
	Timezone string
}

// BirthdayRecord is a stored row joined with live membership data.
// Records are built per query and discarded after the response is rendered.
type BirthdayRecord struct {
	UserID      uint64
	Month       int
	Day         int
	DisplayName string
	Timezone    string
}

// ListingGroup is the set of users sharing one calendar date, with display
// names sorted case-insensitively.
type ListingGroup struct {
	Month     int
	Day       int
	DateIndex int
	Names     []string
}

// MonthDay renders a (month, day) pair as "Mar-01". The month is assumed
// valid; callers go through Index validation first.
func MonthDay(month, day int) string {
	return fmt.Sprintf(config.FormatMonthDay, config.MonthAbbrevs[month], day)
}
