package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// HoursCalculator derives worked, overtime and negative hours from an entry.
type HoursCalculator struct{}

func NewHoursCalculator() *HoursCalculator {
	return &HoursCalculator{}
}

// Calculate measures entry against expectedHours. An entry without a clock out
// is measured up to now and the result is marked as not final. Break time is
// taken from the break instants clipped to the session, not from the rounded
// DurationMinutes, so HoursWorked is exactly (gross - breaks) / 60.
func (c *HoursCalculator) Calculate(entry attendance.TimeEntry, expectedHours float64, now time.Time) attendance.Hours {
	if expectedHours < 0 {
		expectedHours = 0
	}

	if entry.ClockIn == nil {
		return attendance.Hours{ExpectedHours: expectedHours, Absent: true}
	}

	end := now
	final := false
	if entry.ClockOut != nil {
		end = *entry.ClockOut
		final = true
	}

	gross := math.Max(0, end.Sub(*entry.ClockIn).Minutes())
	breakMinutes := NewBreakTracker(entry.Breaks).MinutesWithin(*entry.ClockIn, end)
	net := math.Max(0, gross-breakMinutes)
	worked := net / 60

	return attendance.Hours{
		GrossMinutes:  gross,
		BreakMinutes:  breakMinutes,
		NetMinutes:    net,
		HoursWorked:   worked,
		ExpectedHours: expectedHours,
		Overtime:      math.Max(0, worked-expectedHours),
		NegativeHours: math.Max(0, expectedHours-worked),
		Variance:      worked - expectedHours,
		Final:         final,
	}
}

// FormatHours renders fractional hours as zero-padded HH:MM.
func FormatHours(hours float64) string {
	total := int(math.Round(hours * 60))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%02d:%02d", sign, total/60, total%60)
}

// RoundHours rounds to two decimals for display.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
