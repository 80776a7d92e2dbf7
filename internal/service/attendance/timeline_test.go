package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_TypicalDay(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)
	out := at(17, 30)

	segments := calc.Segments(at(9, 0), &out, []attendance.Break{closedBreak(at(12, 0), at(12, 30))}, at(20, 0))
	require.Len(t, segments, 4)

	marker := segments[0]
	assert.Equal(t, attendance.SegmentClockIn, marker.Type)
	assert.Zero(t, marker.Left)
	assert.Zero(t, marker.Width)
	assert.Equal(t, ColorClockIn, marker.Color)
	assert.Equal(t, "09:00", marker.Label)

	morning := segments[1]
	assert.Equal(t, attendance.SegmentWorking, morning.Type)
	assert.InDelta(t, 0, morning.Left, 1e-9)
	assert.InDelta(t, 25, morning.Width, 1e-9)
	assert.Equal(t, "03:00", morning.Label)
	assert.Equal(t, ColorWorking, morning.Color)

	lunch := segments[2]
	assert.Equal(t, attendance.SegmentBreak, lunch.Type)
	assert.InDelta(t, 25, lunch.Left, 1e-9)
	assert.InDelta(t, 30.0/720*100, lunch.Width, 1e-9)
	assert.Empty(t, lunch.Label, "narrow segments carry no label")
	assert.Equal(t, ColorBreak, lunch.Color)

	afternoon := segments[3]
	assert.Equal(t, attendance.SegmentWorking, afternoon.Type)
	assert.InDelta(t, 210.0/720*100, afternoon.Left, 1e-9)
	assert.InDelta(t, 300.0/720*100, afternoon.Width, 1e-9)
	assert.Equal(t, "05:00", afternoon.Label)
}

func TestTimeline_LongBreakIsLabelled(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)
	out := at(17, 0)

	segments := calc.Segments(at(9, 0), &out, []attendance.Break{closedBreak(at(12, 0), at(13, 0))}, at(20, 0))
	require.Len(t, segments, 4)
	assert.Equal(t, "Break 60m", segments[2].Label)
}

func TestTimeline_ClampsOutsideAxis(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)

	early := at(8, 0)
	segments := calc.Segments(at(7, 0), &early, nil, at(20, 0))
	for _, s := range segments {
		assert.Zero(t, s.Left)
		assert.Zero(t, s.Width)
	}

	late := at(23, 0)
	segments = calc.Segments(at(20, 0), &late, nil, at(23, 30))
	require.Len(t, segments, 2)
	assert.InDelta(t, 660.0/720*100, segments[1].Left, 1e-9)
	assert.InDelta(t, 100, segments[1].Left+segments[1].Width, 1e-9)

	for _, s := range segments {
		assert.GreaterOrEqual(t, s.Left, 0.0)
		assert.LessOrEqual(t, s.Left+s.Width, 100.0+1e-9)
	}
}

func TestTimeline_OpenEntryExtendsToNow(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)

	segments := calc.Segments(at(9, 0), nil, nil, at(10, 0))
	require.Len(t, segments, 2)
	assert.InDelta(t, 60.0/720*100, segments[1].Width, 1e-9)
	assert.Equal(t, at(10, 0), segments[1].End)
}

func TestTimeline_OpenBreakExtendsToNow(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)

	segments := calc.Segments(at(9, 0), nil, []attendance.Break{{StartTime: at(12, 0)}}, at(12, 45))
	require.Len(t, segments, 3)
	assert.Equal(t, attendance.SegmentBreak, segments[2].Type)
	assert.Equal(t, at(12, 45), segments[2].End)
}

func TestTimeline_NoZeroLengthTrailingWork(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)
	out := at(17, 0)

	segments := calc.Segments(at(9, 0), &out, []attendance.Break{closedBreak(at(16, 45), at(17, 0))}, at(20, 0))
	require.Len(t, segments, 3)
	assert.Equal(t, attendance.SegmentBreak, segments[2].Type)
}

func TestTimeline_UsesLocalZone(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	calc := NewTimelineCalculator(loc)

	// 08:00 UTC is 09:00 local
	in := time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC)
	out := in.Add(2 * time.Hour)
	segments := calc.Segments(in, &out, nil, out)
	require.Len(t, segments, 2)
	assert.Equal(t, "09:00", segments[0].Label)
	assert.Zero(t, segments[1].Left)
}

func TestTimeline_Idempotent(t *testing.T) {
	calc := NewTimelineCalculator(time.UTC)
	out := at(17, 0)
	breaks := []attendance.Break{closedBreak(at(12, 0), at(12, 30)), closedBreak(at(15, 0), at(15, 10))}

	first := calc.Segments(at(9, 0), &out, breaks, at(20, 0))
	second := calc.Segments(at(9, 0), &out, breaks, at(20, 0))
	assert.Equal(t, first, second)
}

func TestTimeline_ForEntryWithoutClockIn(t *testing.T) {
	assert.Nil(t, NewTimelineCalculator(time.UTC).ForEntry(skeleton(), at(10, 0)))
}
