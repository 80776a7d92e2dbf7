package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// WeekInput is everything the aggregator needs to build one week.
type WeekInput struct {
	// Reference is any date in the requested week.
	Reference time.Time
	Entries   []attendance.TimeEntry
	Today     time.Time
	Now       time.Time
	// ExpectedHours returns the contracted hours for a date.
	ExpectedHours func(date time.Time) float64
}

// WeeklyAggregator assembles the Monday to Sunday view of an employee's entries.
type WeeklyAggregator struct {
	hours    *HoursCalculator
	timeline *TimelineCalculator
}

func NewWeeklyAggregator(hours *HoursCalculator, timeline *TimelineCalculator) *WeeklyAggregator {
	return &WeeklyAggregator{hours: hours, timeline: timeline}
}

// Aggregate classifies each day of the week up to today and totals the
// finished entries. Rows are ordered today first, then most recent first.
func (a *WeeklyAggregator) Aggregate(in WeekInput) attendance.WeeklyTimesheet {
	weekStart := attendance.WeekStart(in.Reference)
	weekEnd := weekStart.AddDate(0, 0, 6)

	byDate := make(map[string]attendance.TimeEntry, len(in.Entries))
	for _, e := range in.Entries {
		byDate[e.Date.Format(attendance.DateLayout)] = e
	}

	expected := in.ExpectedHours
	if expected == nil {
		expected = func(time.Time) float64 { return attendance.DefaultExpectedHours }
	}

	sheet := attendance.WeeklyTimesheet{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Days:      []attendance.DayEntry{},
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		entry, hasEntry := byDate[date.Format(attendance.DateLayout)]

		day := attendance.DayEntry{
			Date:      date,
			IsToday:   date.Equal(in.Today),
			IsWeekend: attendance.IsWeekend(date),
		}

		if hasEntry && entry.ClockIn != nil {
			e := entry
			day.Entry = &e
			now := a.measuredUntil(date, in)
			day.Hours = a.hours.Calculate(entry, expected(date), now)
			day.Segments = a.timeline.ForEntry(entry, now)
			if day.Hours.Final {
				day.Classification = attendance.DayPresent
				sheet.Statistics.TotalHoursWorked += day.Hours.HoursWorked
				sheet.Statistics.TotalOvertime += day.Hours.Overtime
				sheet.Statistics.TotalNegativeHours += day.Hours.NegativeHours
			} else {
				day.Classification = attendance.DayInProgress
			}
		} else {
			if hasEntry {
				e := entry
				day.Entry = &e
			}
			day.Hours = attendance.Hours{Absent: true}
			if day.IsWeekend {
				day.Classification = attendance.DayWeekEnd
			} else {
				day.Classification = attendance.DayAbsent
			}
		}

		if date.After(in.Today) {
			continue
		}
		sheet.Days = append(sheet.Days, day)
	}

	sort.SliceStable(sheet.Days, func(i, j int) bool {
		if sheet.Days[i].IsToday != sheet.Days[j].IsToday {
			return sheet.Days[i].IsToday
		}
		return sheet.Days[i].Date.After(sheet.Days[j].Date)
	})

	return sheet
}

// measuredUntil bounds an open entry on a past day to that day's local midnight.
func (a *WeeklyAggregator) measuredUntil(date time.Time, in WeekInput) time.Time {
	if !date.Before(in.Today) {
		return in.Now
	}
	nextDay := time.Date(date.Year(), date.Month(), date.Day()+1, 0, 0, 0, 0, a.timeline.loc)
	if in.Now.After(nextDay) {
		return nextDay
	}
	return in.Now
}
