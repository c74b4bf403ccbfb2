package engine

import (
	"errors"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// Sentinel errors of the user-facing operations. Command glue maps these to
// localized replies; anything else is treated as an internal failure.
var (
	// ErrInvalidRecord marks a (month, day) pair outside the fixed calendar
	// model. Validated input never triggers it; it exists to fail fast when a
	// collaborator hands us a corrupt row.
	ErrInvalidRecord = errors.New(config.ErrInvalidRecord)

	// ErrUserNotFound means a search target could not be resolved to a live
	// guild member.
	ErrUserNotFound = errors.New(config.ErrUserNotFound)

	// ErrNoBirthdayData means the resolved member has no stored record.
	ErrNoBirthdayData = errors.New(config.ErrNoBirthdayData)

	// ErrUnsupportedFormat means an unrecognized export format argument.
	ErrUnsupportedFormat = errors.New(config.ErrUnsupportedFormat)
)
