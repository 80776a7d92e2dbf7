package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
)

// The timeline axis runs from 09:00 to 21:00 local time.
const (
	TimelineStartMinute = 9 * 60
	TimelineSpanMinutes = 12 * 60

	// MinLabelWidth is the narrowest segment, in percent, that still carries a label.
	MinLabelWidth = 6.0

	ColorClockIn = "#3b82f6"
	ColorWorking = "#10b981"
	ColorBreak   = "#f59e0b"
)

// TimelineCalculator lays an entry out as positioned segments.
type TimelineCalculator struct {
	loc *time.Location
}

func NewTimelineCalculator(loc *time.Location) *TimelineCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &TimelineCalculator{loc: loc}
}

// ForEntry returns the segments of entry, or nil when the entry has no clock in.
func (c *TimelineCalculator) ForEntry(entry attendance.TimeEntry, now time.Time) []attendance.Segment {
	if entry.ClockIn == nil {
		return nil
	}
	return c.Segments(*entry.ClockIn, entry.ClockOut, entry.Breaks, now)
}

// Segments walks the day chronologically: a clock-in marker, then working
// stretches alternating with breaks. An open entry extends to now.
func (c *TimelineCalculator) Segments(clockIn time.Time, clockOut *time.Time, breaks []attendance.Break, now time.Time) []attendance.Segment {
	local := clockIn.In(c.loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)

	end := now
	if clockOut != nil {
		end = *clockOut
	}
	if end.Before(clockIn) {
		end = clockIn
	}

	// The clock-in marker has no width but always carries its time label.
	segments := []attendance.Segment{{
		Type:  attendance.SegmentClockIn,
		Left:  c.position(midnight, clockIn),
		Width: 0,
		Color: ColorClockIn,
		Label: local.Format("15:04"),
		Start: clockIn,
		End:   clockIn,
	}}

	cursor := clockIn
	for _, b := range NewBreakTracker(breaks).Breaks() {
		start := b.StartTime
		if start.Before(cursor) {
			start = cursor
		}
		if start.After(end) {
			break
		}
		if start.After(cursor) {
			segments = append(segments, c.segment(midnight, attendance.SegmentWorking, cursor, start))
		}

		stop := end
		if b.EndTime != nil && b.EndTime.Before(end) {
			stop = *b.EndTime
		}
		if stop.Before(start) {
			stop = start
		}
		segments = append(segments, c.segment(midnight, attendance.SegmentBreak, start, stop))
		cursor = stop
	}

	if end.After(cursor) {
		segments = append(segments, c.segment(midnight, attendance.SegmentWorking, cursor, end))
	}

	return segments
}

func (c *TimelineCalculator) segment(midnight time.Time, kind attendance.SegmentType, start, end time.Time) attendance.Segment {
	left := c.position(midnight, start)
	width := math.Max(0, c.position(midnight, end)-left)

	seg := attendance.Segment{
		Type:  kind,
		Left:  left,
		Width: width,
		Start: start,
		End:   end,
	}

	minutes := end.Sub(start).Minutes()
	switch kind {
	case attendance.SegmentBreak:
		seg.Color = ColorBreak
		seg.Label = fmt.Sprintf("Break %dm", int(math.Round(minutes)))
	default:
		seg.Color = ColorWorking
		seg.Label = FormatHours(minutes / 60)
	}

	if width < MinLabelWidth {
		seg.Label = ""
	}
	return seg
}

// position maps t to a percentage of the axis, clamped to [0, 100].
func (c *TimelineCalculator) position(midnight, t time.Time) float64 {
	minutes := t.Sub(midnight).Minutes()
	pct := (minutes - TimelineStartMinute) / TimelineSpanMinutes * 100
	return math.Min(100, math.Max(0, pct))
}
