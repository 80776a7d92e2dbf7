package attendance

import "errors"

// Attendance domain errors
var (
	// Transition errors
	ErrAlreadyClockedIn = errors.New("you have already clocked in today")
	ErrNoActiveSession  = errors.New("no active session for this action")
	ErrInvalidInterval  = errors.New("clock out must be after clock in")

	// Concurrency errors
	ErrTransitionInProgress = errors.New("another action for this entry is in progress")
	ErrConcurrentUpdate     = errors.New("time entry was modified concurrently")
	ErrEntryAlreadyExists   = errors.New("a time entry already exists for this date")

	// General errors
	ErrEntryNotFound    = errors.New("time entry not found")
	ErrStoreUnavailable = errors.New("time entry store unavailable")
)
