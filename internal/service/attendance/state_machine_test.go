package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skeleton() attendance.TimeEntry {
	return attendance.TimeEntry{
		EmployeeID: "emp-1",
		Date:       time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
}

func apply(t *testing.T, entry attendance.TimeEntry, action attendance.Action, now time.Time) attendance.TimeEntry {
	t.Helper()
	next, err := Transition(entry, action, now)
	require.NoError(t, err)
	return next
}

func TestTransition_FullDay(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	assert.Equal(t, attendance.StatusClockedIn, entry.Status)

	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))
	assert.Equal(t, attendance.StatusOnBreak, entry.Status)

	entry = apply(t, entry, attendance.ActionResumeWork, at(12, 30))
	assert.Equal(t, attendance.StatusClockedIn, entry.Status)

	entry = apply(t, entry, attendance.ActionClockOut, at(17, 30))
	assert.Equal(t, attendance.StatusClockedOut, entry.Status)
	require.Len(t, entry.Breaks, 1)
	assert.Equal(t, 30, entry.Breaks[0].DurationMinutes)
	assert.Equal(t, at(17, 30), *entry.ClockOut)
}

func TestTransition_Table(t *testing.T) {
	clockedIn := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	onBreak := apply(t, clockedIn, attendance.ActionStartBreak, at(12, 0))
	clockedOut := apply(t, clockedIn, attendance.ActionClockOut, at(17, 0))

	tests := []struct {
		name    string
		entry   attendance.TimeEntry
		action  attendance.Action
		wantErr error
		want    attendance.Status
	}{
		{"clock in from nothing", skeleton(), attendance.ActionClockIn, nil, attendance.StatusClockedIn},
		{"clock in twice", clockedIn, attendance.ActionClockIn, attendance.ErrAlreadyClockedIn, ""},
		{"clock in on break", onBreak, attendance.ActionClockIn, attendance.ErrAlreadyClockedIn, ""},
		{"clock in after clock out", clockedOut, attendance.ActionClockIn, nil, attendance.StatusClockedIn},
		{"break before clock in", skeleton(), attendance.ActionStartBreak, attendance.ErrNoActiveSession, ""},
		{"break twice", onBreak, attendance.ActionStartBreak, attendance.ErrNoActiveSession, ""},
		{"break after clock out", clockedOut, attendance.ActionStartBreak, attendance.ErrNoActiveSession, ""},
		{"resume without break", clockedIn, attendance.ActionResumeWork, attendance.ErrNoActiveSession, ""},
		{"resume before clock in", skeleton(), attendance.ActionResumeWork, attendance.ErrNoActiveSession, ""},
		{"clock out without clock in", skeleton(), attendance.ActionClockOut, attendance.ErrNoActiveSession, ""},
		{"clock out twice", clockedOut, attendance.ActionClockOut, attendance.ErrNoActiveSession, ""},
		{"clock out on break", onBreak, attendance.ActionClockOut, nil, attendance.StatusClockedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Transition(tt.entry, tt.action, at(18, 0))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Status)
			assert.Equal(t, next.DeriveStatus(), next.Status)
		})
	}
}

func TestTransition_ClockInAfterClockOutResetsDay(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))
	entry = apply(t, entry, attendance.ActionClockOut, at(13, 0))

	entry = apply(t, entry, attendance.ActionClockIn, at(14, 0))
	assert.Equal(t, at(14, 0), *entry.ClockIn)
	assert.Nil(t, entry.ClockOut)
	assert.Empty(t, entry.Breaks)
}

func TestTransition_DoubleStartBreakKeepsOneOpenBreak(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))

	_, err := Transition(entry, attendance.ActionStartBreak, at(12, 1))
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)

	open := 0
	for _, b := range entry.Breaks {
		if b.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestTransition_ClockOutClosesOpenBreak(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(16, 45))
	entry = apply(t, entry, attendance.ActionClockOut, at(17, 0))

	require.Len(t, entry.Breaks, 1)
	require.NotNil(t, entry.Breaks[0].EndTime)
	assert.Equal(t, at(17, 0), *entry.Breaks[0].EndTime)
	assert.Equal(t, 15, entry.Breaks[0].DurationMinutes)
}

func TestTransition_ClockOutNotAfterClockIn(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	_, err := Transition(entry, attendance.ActionClockOut, at(9, 0))
	assert.ErrorIs(t, err, attendance.ErrInvalidInterval)
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))

	_ = apply(t, entry, attendance.ActionResumeWork, at(12, 30))
	assert.True(t, entry.Breaks[0].IsOpen())
	assert.Equal(t, attendance.StatusOnBreak, entry.Status)
}

func TestTransition_UnknownAction(t *testing.T) {
	_, err := Transition(skeleton(), attendance.Action("teleport"), at(9, 0))
	assert.Error(t, err)
}

func TestApplyManualEdit_SetsClockOut(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	out := at(17, 0)

	next, err := ApplyManualEdit(entry, ManualEdit{ClockOut: &out})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedOut, next.Status)
	assert.Equal(t, out, *next.ClockOut)
}

func TestApplyManualEdit_RejectsInvertedInterval(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionClockOut, at(17, 0))
	out := at(8, 0)

	_, err := ApplyManualEdit(entry, ManualEdit{ClockOut: &out})
	assert.ErrorIs(t, err, attendance.ErrInvalidInterval)
	assert.Equal(t, at(17, 0), *entry.ClockOut)

	in := at(17, 0)
	_, err = ApplyManualEdit(entry, ManualEdit{ClockIn: &in})
	assert.ErrorIs(t, err, attendance.ErrInvalidInterval)
}

func TestApplyManualEdit_ClockOutWithoutClockIn(t *testing.T) {
	out := at(17, 0)
	_, err := ApplyManualEdit(skeleton(), ManualEdit{ClockOut: &out})
	assert.ErrorIs(t, err, attendance.ErrInvalidInterval)
}

func TestApplyManualEdit_ClosesOpenBreak(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))
	out := at(13, 0)

	next, err := ApplyManualEdit(entry, ManualEdit{ClockOut: &out})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedOut, next.Status)
	assert.Equal(t, 60, next.Breaks[0].DurationMinutes)
}

func TestApplyManualEdit_ClipsBreaksToSession(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))
	entry = apply(t, entry, attendance.ActionResumeWork, at(12, 30))
	entry = apply(t, entry, attendance.ActionClockOut, at(17, 0))

	tests := []struct {
		name       string
		edit       ManualEdit
		wantBreaks int
		wantStart  time.Time
		wantEnd    time.Time
		wantHours  float64
	}{
		{
			name:       "clock out before the break drops it",
			edit:       ManualEdit{ClockOut: ptr(at(11, 0))},
			wantBreaks: 0,
			wantHours:  2,
		},
		{
			name:       "clock out inside the break shortens it",
			edit:       ManualEdit{ClockOut: ptr(at(12, 15))},
			wantBreaks: 1,
			wantStart:  at(12, 0),
			wantEnd:    at(12, 15),
			wantHours:  3,
		},
		{
			name:       "clock in inside the break shortens it",
			edit:       ManualEdit{ClockIn: ptr(at(12, 10))},
			wantBreaks: 1,
			wantStart:  at(12, 10),
			wantEnd:    at(12, 30),
			wantHours:  4.5,
		},
		{
			name:       "clock in after the break drops it",
			edit:       ManualEdit{ClockIn: ptr(at(13, 0))},
			wantBreaks: 0,
			wantHours:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyManualEdit(entry, tt.edit)
			require.NoError(t, err)
			require.Len(t, next.Breaks, tt.wantBreaks)
			if tt.wantBreaks > 0 {
				assert.Equal(t, tt.wantStart, next.Breaks[0].StartTime)
				assert.Equal(t, tt.wantEnd, *next.Breaks[0].EndTime)
				assert.Equal(t, int(tt.wantEnd.Sub(tt.wantStart).Minutes()), next.Breaks[0].DurationMinutes)
			}

			h := NewHoursCalculator().Calculate(next, 8, at(18, 0))
			assert.InDelta(t, tt.wantHours, h.HoursWorked, 1e-9)

			var working float64
			for _, seg := range NewTimelineCalculator(time.UTC).ForEntry(next, at(18, 0)) {
				if seg.Type == attendance.SegmentWorking {
					working += seg.End.Sub(seg.Start).Hours()
				}
			}
			assert.InDelta(t, h.HoursWorked, working, 1e-9, "timeline and hours agree")
		})
	}

	// the stored entry is untouched
	require.Len(t, entry.Breaks, 1)
	assert.Equal(t, at(12, 0), entry.Breaks[0].StartTime)
}

func TestCloseStale(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(12, 0))
	entry = apply(t, entry, attendance.ActionResumeWork, at(12, 30))

	closed, err := CloseStale(entry, 8, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedOut, closed.Status)
	assert.Equal(t, at(17, 30), *closed.ClockOut)
}

func TestCloseStale_CapsAtEndOfDay(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(20, 0))
	entry = apply(t, entry, attendance.ActionStartBreak, at(21, 0))

	closed, err := CloseStale(entry, 8, time.UTC)
	require.NoError(t, err)
	want := time.Date(2024, time.January, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, want, *closed.ClockOut)
	assert.Equal(t, want, *closed.Breaks[0].EndTime)
	assert.Equal(t, attendance.StatusClockedOut, closed.Status)
}

func TestCloseStale_RejectsClosedEntry(t *testing.T) {
	entry := apply(t, skeleton(), attendance.ActionClockIn, at(9, 0))
	entry = apply(t, entry, attendance.ActionClockOut, at(17, 0))

	_, err := CloseStale(entry, 8, time.UTC)
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
}
