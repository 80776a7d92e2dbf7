package attendance

import (
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// DefaultExpectedHours is used when no shift supplies a value for the day.
const DefaultExpectedHours = 8.0

type Status string

const (
	StatusNotClockedIn Status = "NOT_CLOCKED_IN"
	StatusClockedIn    Status = "CLOCKED_IN"
	StatusOnBreak      Status = "ON_BREAK"
	StatusClockedOut   Status = "CLOCKED_OUT"
)

// Action is a clock action an employee performs on their own entry.
type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionStartBreak Action = "start_break"
	ActionResumeWork Action = "resume_work"
	ActionClockOut   Action = "clock_out"
)

type TimeEntry struct {
	ID          string
	EmployeeID  string
	Date        time.Time // civil date at 00:00 UTC
	ClockIn     *time.Time
	ClockOut    *time.Time
	Status      Status
	Breaks      []Break
	Location    string
	WorkType    string
	GPSLocation *GPSLocation
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Break struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
}

// IsOpen reports whether the break has not been closed yet.
func (b Break) IsOpen() bool {
	return b.EndTime == nil
}

type GPSLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// OpenBreak returns the index of the open break, or -1.
func (e TimeEntry) OpenBreak() int {
	for i := range e.Breaks {
		if e.Breaks[i].IsOpen() {
			return i
		}
	}
	return -1
}

// DeriveStatus computes the status from ClockIn, ClockOut and the breaks.
// The stored Status field is only a projection of this value.
func (e TimeEntry) DeriveStatus() Status {
	switch {
	case e.OpenBreak() >= 0:
		return StatusOnBreak
	case e.ClockOut != nil:
		return StatusClockedOut
	case e.ClockIn != nil:
		return StatusClockedIn
	default:
		return StatusNotClockedIn
	}
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (e TimeEntry) Clone() TimeEntry {
	c := e
	if e.ClockIn != nil {
		t := *e.ClockIn
		c.ClockIn = &t
	}
	if e.ClockOut != nil {
		t := *e.ClockOut
		c.ClockOut = &t
	}
	if e.GPSLocation != nil {
		g := *e.GPSLocation
		c.GPSLocation = &g
	}
	if e.Breaks != nil {
		c.Breaks = make([]Break, len(e.Breaks))
		for i, b := range e.Breaks {
			c.Breaks[i] = b
			if b.EndTime != nil {
				t := *b.EndTime
				c.Breaks[i].EndTime = &t
			}
		}
	}
	return c
}

// Hours holds the figures derived from an entry by the hours calculator.
type Hours struct {
	GrossMinutes  float64
	BreakMinutes  float64
	NetMinutes    float64
	HoursWorked   float64
	ExpectedHours float64
	Overtime      float64
	NegativeHours float64
	Variance      float64
	Absent        bool
	Final         bool
}

type WeeklyStatistics struct {
	TotalHoursWorked   float64
	TotalOvertime      float64
	TotalNegativeHours float64
}

// DayClassification labels a day row in the weekly timesheet.
type DayClassification string

const (
	DayPresent    DayClassification = "Present"
	DayInProgress DayClassification = "InProgress"
	DayAbsent     DayClassification = "Absent"
	DayWeekEnd    DayClassification = "WeekEnd"
)

type DayEntry struct {
	Date           time.Time
	Entry          *TimeEntry
	Hours          Hours
	Classification DayClassification
	IsToday        bool
	IsWeekend      bool
	Segments       []Segment
}

type WeeklyTimesheet struct {
	WeekStart  time.Time
	WeekEnd    time.Time
	Days       []DayEntry
	Statistics WeeklyStatistics
}

type SegmentType string

const (
	SegmentClockIn SegmentType = "clock_in"
	SegmentWorking SegmentType = "working"
	SegmentBreak   SegmentType = "break"
)

// Segment is an interval positioned on the 09:00-21:00 timeline axis.
// Left and Width are percentages of the axis.
type Segment struct {
	Type  SegmentType
	Left  float64
	Width float64
	Color string
	Label string
	Start time.Time
	End   time.Time
}

// DateOf returns the civil date of t in loc, as 00:00 UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
