package attendance

import (
	"context"
	"time"
)

// TimeEntryRepository is the durable store of time entries keyed by employee and date.
type TimeEntryRepository interface {
	// FindEntry returns the entry for employee on date, or nil when none exists
	FindEntry(ctx context.Context, employeeID string, date time.Time) (*TimeEntry, error)

	// GetEntry retrieves an entry by ID, ErrEntryNotFound when missing
	GetEntry(ctx context.Context, id string) (TimeEntry, error)

	// CreateEntry inserts a new entry. A second entry for the same employee and
	// date fails with ErrConcurrentUpdate
	CreateEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// UpdateEntry writes entry if its Version still matches the stored one and
	// returns it with the new Version
	UpdateEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// DeleteEntry removes an entry, ErrEntryNotFound when missing
	DeleteEntry(ctx context.Context, id string) error

	// ListEntries returns entries with start <= date <= end ordered by date
	ListEntries(ctx context.Context, employeeID string, start, end time.Time) ([]TimeEntry, error)

	// ListOpenEntries returns entries dated before the given date that are still clocked in
	ListOpenEntries(ctx context.Context, before time.Time) ([]TimeEntry, error)
}

// ShiftRepository exposes the externally managed shift assignments.
type ShiftRepository interface {
	// ExpectedHours returns the scheduled hours for the day; ok is false when no shift applies
	ExpectedHours(ctx context.Context, employeeID string, date time.Time) (hours float64, ok bool, err error)

	// ResetAssignmentStatus puts the day's shift assignment back to "scheduled"
	ResetAssignmentStatus(ctx context.Context, employeeID string, date time.Time) error
}
