package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// Transition decides whether action is legal for current and returns the
// resulting entry. current is never modified. For an employee without an entry
// for the day, pass a skeleton holding only EmployeeID and Date.
func Transition(current attendance.TimeEntry, action attendance.Action, now time.Time) (attendance.TimeEntry, error) {
	status := current.DeriveStatus()
	next := current.Clone()

	switch action {
	case attendance.ActionClockIn:
		if status == attendance.StatusClockedIn || status == attendance.StatusOnBreak {
			return attendance.TimeEntry{}, attendance.ErrAlreadyClockedIn
		}
		clockIn := now
		next.ClockIn = &clockIn
		next.ClockOut = nil
		next.Breaks = nil

	case attendance.ActionStartBreak:
		if status != attendance.StatusClockedIn {
			return attendance.TimeEntry{}, fmt.Errorf("%w: cannot start a break while %s", attendance.ErrNoActiveSession, status)
		}
		if now.Before(*current.ClockIn) {
			return attendance.TimeEntry{}, fmt.Errorf("%w: break cannot start before clock in", attendance.ErrInvalidInterval)
		}
		tracker := NewBreakTracker(current.Breaks)
		if err := tracker.Start(now); err != nil {
			return attendance.TimeEntry{}, err
		}
		next.Breaks = tracker.Breaks()

	case attendance.ActionResumeWork:
		if status != attendance.StatusOnBreak {
			return attendance.TimeEntry{}, fmt.Errorf("%w: cannot resume work while %s", attendance.ErrNoActiveSession, status)
		}
		tracker := NewBreakTracker(current.Breaks)
		if err := tracker.End(now); err != nil {
			return attendance.TimeEntry{}, err
		}
		next.Breaks = tracker.Breaks()

	case attendance.ActionClockOut:
		if status != attendance.StatusClockedIn && status != attendance.StatusOnBreak {
			return attendance.TimeEntry{}, fmt.Errorf("%w: cannot clock out while %s", attendance.ErrNoActiveSession, status)
		}
		if !now.After(*current.ClockIn) {
			return attendance.TimeEntry{}, attendance.ErrInvalidInterval
		}
		if status == attendance.StatusOnBreak {
			tracker := NewBreakTracker(current.Breaks)
			if err := tracker.End(now); err != nil {
				return attendance.TimeEntry{}, err
			}
			next.Breaks = tracker.Breaks()
		}
		clockOut := now
		next.ClockOut = &clockOut

	default:
		return attendance.TimeEntry{}, fmt.Errorf("unknown clock action %q", action)
	}

	next.Status = next.DeriveStatus()
	return next, nil
}

// ManualEdit holds the fields an administrator may set directly.
// Nil fields are left unchanged.
type ManualEdit struct {
	Date     *time.Time
	ClockIn  *time.Time
	ClockOut *time.Time
}

// ApplyManualEdit merges edit into current. The merged entry must satisfy
// ClockOut > ClockIn, otherwise ErrInvalidInterval is returned and nothing changes.
// Breaks are clipped to the edited session: a break still open when a clock
// out is set is closed at the clock out, and breaks outside it are dropped.
func ApplyManualEdit(current attendance.TimeEntry, edit ManualEdit) (attendance.TimeEntry, error) {
	next := current.Clone()

	if edit.Date != nil {
		next.Date = *edit.Date
	}
	if edit.ClockIn != nil {
		t := *edit.ClockIn
		next.ClockIn = &t
	}
	if edit.ClockOut != nil {
		t := *edit.ClockOut
		next.ClockOut = &t
	}

	if next.ClockOut != nil {
		if next.ClockIn == nil || !next.ClockOut.After(*next.ClockIn) {
			return attendance.TimeEntry{}, attendance.ErrInvalidInterval
		}
	}

	if next.ClockIn != nil && len(next.Breaks) > 0 {
		tracker := NewBreakTracker(next.Breaks)
		tracker.Clip(*next.ClockIn, next.ClockOut)
		next.Breaks = tracker.Breaks()
	}

	next.Status = next.DeriveStatus()
	return next, nil
}

// CloseStale clocks out an entry left open past its day. The clock out is
// ClockIn + expected hours + closed break time, capped at the end of the
// entry's local day; an open break is closed at the same instant.
func CloseStale(current attendance.TimeEntry, expectedHours float64, loc *time.Location) (attendance.TimeEntry, error) {
	if current.ClockIn == nil || current.ClockOut != nil {
		return attendance.TimeEntry{}, fmt.Errorf("%w: entry is not open", attendance.ErrNoActiveSession)
	}

	var closedBreakMinutes int
	for _, b := range current.Breaks {
		if !b.IsOpen() {
			closedBreakMinutes += b.DurationMinutes
		}
	}

	clockIn := *current.ClockIn
	closeAt := clockIn.
		Add(time.Duration(expectedHours * float64(time.Hour))).
		Add(time.Duration(closedBreakMinutes) * time.Minute)

	endOfDay := time.Date(current.Date.Year(), current.Date.Month(), current.Date.Day()+1, 0, 0, 0, 0, loc).Add(-time.Second)
	if closeAt.After(endOfDay) {
		closeAt = endOfDay
	}

	tracker := NewBreakTracker(current.Breaks)
	if open, ok := tracker.Open(); ok && closeAt.Before(open.StartTime) {
		closeAt = open.StartTime
	}
	if !closeAt.After(clockIn) {
		closeAt = clockIn.Add(time.Minute)
	}

	next := current.Clone()
	if _, ok := tracker.Open(); ok {
		if err := tracker.End(closeAt); err != nil {
			return attendance.TimeEntry{}, err
		}
		next.Breaks = tracker.Breaks()
	}
	next.ClockOut = &closeAt
	next.Status = next.DeriveStatus()
	return next, nil
}
