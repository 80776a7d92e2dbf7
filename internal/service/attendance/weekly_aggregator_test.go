package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func entryOn(d int, inHour, outHour int) attendance.TimeEntry {
	in := time.Date(2024, time.January, d, inHour, 0, 0, 0, time.UTC)
	e := attendance.TimeEntry{EmployeeID: "emp-1", Date: day(d), ClockIn: &in}
	if outHour > 0 {
		out := time.Date(2024, time.January, d, outHour, 0, 0, 0, time.UTC)
		e.ClockOut = &out
	}
	e.Status = e.DeriveStatus()
	return e
}

func newAggregator() *WeeklyAggregator {
	return NewWeeklyAggregator(NewHoursCalculator(), NewTimelineCalculator(time.UTC))
}

func TestWeeklyAggregator_MidWeek(t *testing.T) {
	// Wednesday 17 Jan 2024, 11:00
	now := time.Date(2024, time.January, 17, 11, 0, 0, 0, time.UTC)

	sheet := newAggregator().Aggregate(WeekInput{
		Reference: day(17),
		Entries: []attendance.TimeEntry{
			entryOn(15, 9, 17), // 8h
			entryOn(17, 9, 0),  // in progress
		},
		Today: day(17),
		Now:   now,
	})

	assert.Equal(t, day(15), sheet.WeekStart)
	assert.Equal(t, day(21), sheet.WeekEnd)
	require.Len(t, sheet.Days, 3, "future days are excluded")

	assert.Equal(t, day(17), sheet.Days[0].Date)
	assert.True(t, sheet.Days[0].IsToday)
	assert.Equal(t, attendance.DayInProgress, sheet.Days[0].Classification)
	assert.InDelta(t, 2, sheet.Days[0].Hours.HoursWorked, 1e-9)
	assert.NotEmpty(t, sheet.Days[0].Segments)

	assert.Equal(t, day(16), sheet.Days[1].Date)
	assert.Equal(t, attendance.DayAbsent, sheet.Days[1].Classification)
	assert.Nil(t, sheet.Days[1].Entry)

	assert.Equal(t, day(15), sheet.Days[2].Date)
	assert.Equal(t, attendance.DayPresent, sheet.Days[2].Classification)

	// only finished days count towards the totals
	assert.InDelta(t, 8, sheet.Statistics.TotalHoursWorked, 1e-9)
	assert.Zero(t, sheet.Statistics.TotalOvertime)
	assert.Zero(t, sheet.Statistics.TotalNegativeHours)
}

func TestWeeklyAggregator_FullPastWeek(t *testing.T) {
	now := time.Date(2024, time.January, 24, 10, 0, 0, 0, time.UTC)

	sheet := newAggregator().Aggregate(WeekInput{
		Reference: day(18),
		Entries: []attendance.TimeEntry{
			entryOn(15, 9, 17), // 8h
			entryOn(16, 9, 13), // 4h, 4 short
			entryOn(17, 9, 19), // 10h, 2 over
			entryOn(20, 10, 12),
		},
		Today: day(24),
		Now:   now,
		ExpectedHours: func(date time.Time) float64 {
			if attendance.IsWeekend(date) {
				return 0
			}
			return 8
		},
	})

	require.Len(t, sheet.Days, 7)
	for i := 1; i < len(sheet.Days); i++ {
		assert.True(t, sheet.Days[i-1].Date.After(sheet.Days[i].Date), "rows are most recent first")
		assert.False(t, sheet.Days[i].IsToday)
	}

	byDate := map[int]attendance.DayEntry{}
	for _, d := range sheet.Days {
		byDate[d.Date.Day()] = d
	}
	assert.Equal(t, attendance.DayWeekEnd, byDate[21].Classification)
	assert.Equal(t, attendance.DayPresent, byDate[20].Classification, "weekend work is present")
	assert.Equal(t, attendance.DayAbsent, byDate[18].Classification)
	assert.Equal(t, attendance.DayAbsent, byDate[19].Classification)

	assert.InDelta(t, 8+4+10+2, sheet.Statistics.TotalHoursWorked, 1e-9)
	assert.InDelta(t, 2+2, sheet.Statistics.TotalOvertime, 1e-9)
	assert.InDelta(t, 4, sheet.Statistics.TotalNegativeHours, 1e-9)
}

func TestWeeklyAggregator_EntryWithoutClockInIsAbsent(t *testing.T) {
	now := time.Date(2024, time.January, 16, 10, 0, 0, 0, time.UTC)
	empty := attendance.TimeEntry{EmployeeID: "emp-1", Date: day(15)}

	sheet := newAggregator().Aggregate(WeekInput{
		Reference: day(15),
		Entries:   []attendance.TimeEntry{empty},
		Today:     day(16),
		Now:       now,
	})

	require.Len(t, sheet.Days, 2)
	assert.Equal(t, attendance.DayAbsent, sheet.Days[1].Classification)
	assert.Zero(t, sheet.Statistics.TotalHoursWorked)
}

func TestWeeklyAggregator_SundayReferenceBelongsToPreviousMonday(t *testing.T) {
	sheet := newAggregator().Aggregate(WeekInput{
		Reference: day(21),
		Today:     day(21),
		Now:       time.Date(2024, time.January, 21, 12, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, day(15), sheet.WeekStart)
	assert.Len(t, sheet.Days, 7)
	assert.True(t, sheet.Days[0].IsToday)
}

func TestWeeklyAggregator_OpenPastDayStopsAtMidnight(t *testing.T) {
	sheet := newAggregator().Aggregate(WeekInput{
		Reference: day(17),
		Entries:   []attendance.TimeEntry{entryOn(15, 9, 0)},
		Today:     day(17),
		Now:       time.Date(2024, time.January, 17, 11, 0, 0, 0, time.UTC),
	})

	require.Len(t, sheet.Days, 3)
	monday := sheet.Days[2]
	assert.Equal(t, day(15), monday.Date)
	assert.Equal(t, attendance.DayInProgress, monday.Classification)
	assert.InDelta(t, 15, monday.Hours.HoursWorked, 1e-9)
	require.NotEmpty(t, monday.Segments)
	assert.Equal(t, day(16), monday.Segments[len(monday.Segments)-1].End)
	assert.Zero(t, sheet.Statistics.TotalHoursWorked)
}
