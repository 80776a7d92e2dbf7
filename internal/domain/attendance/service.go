package attendance

import (
	"context"
)

// AttendanceService defines the clock actions and timesheet reads
type AttendanceService interface {
	// ClockIn starts the employee's day
	ClockIn(ctx context.Context, req ClockInRequest) (TimeEntryResponse, error)

	// StartBreak opens a break on today's entry
	StartBreak(ctx context.Context, employeeID string) (TimeEntryResponse, error)

	// ResumeWork closes the open break
	ResumeWork(ctx context.Context, employeeID string) (TimeEntryResponse, error)

	// ClockOut ends the day and returns the final hours
	ClockOut(ctx context.Context, employeeID string) (TimeEntryResponse, error)

	// GetStatus returns today's entry with the actions currently allowed
	GetStatus(ctx context.Context, employeeID string) (StatusResponse, error)

	// GetWeeklyTimesheet aggregates the week containing weekStart
	GetWeeklyTimesheet(ctx context.Context, employeeID string, weekStart string) (WeeklyTimesheetResponse, error)

	// GetTimeline returns the timeline segments of one day
	GetTimeline(ctx context.Context, employeeID string, date string) (TimelineResponse, error)

	// ManualEdit sets clock times directly (admin)
	ManualEdit(ctx context.Context, req ManualEditRequest) (TimeEntryResponse, error)

	// DeleteEntry removes an entry (admin)
	DeleteEntry(ctx context.Context, id string) error

	// AutoCloseStaleEntries clocks out entries left open on previous days
	AutoCloseStaleEntries(ctx context.Context) (int, error)
}
